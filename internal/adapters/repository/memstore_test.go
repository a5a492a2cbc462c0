package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/podiumlab/podium/internal/adapters/repository"
	"github.com/podiumlab/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func obs(userID, metricID string, value float64, counted bool) model.Observation {
	return model.Observation{
		UserID:   userID,
		MetricID: metricID,
		Value:    value,
		Counted:  counted,
		At:       time.Now(),
	}
}

func TestMemStore_Population(t *testing.T) {
	Convey("Given a store with one metric and mixed observations", t, func() {
		ctx := context.Background()
		s := repository.NewMemStore()
		So(s.PutMetric(ctx, model.MetricDefinition{ID: "deadlift_kg", ClassID: "strength", HigherIsBetter: true}), ShouldBeNil)

		So(s.AddObservation(ctx, obs("a", "deadlift_kg", 180, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("b", "deadlift_kg", 140, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("c", "deadlift_kg", 220, false)), ShouldBeNil)

		Convey("When the population is read", func() {
			pop, err := s.Population(ctx, "deadlift_kg")

			Convey("Then only counted observations appear", func() {
				So(err, ShouldBeNil)
				So(pop, ShouldHaveLength, 2)
				So(pop, ShouldContain, 180.0)
				So(pop, ShouldContain, 140.0)
			})
		})

		Convey("When an unknown metric is read", func() {
			pop, err := s.Population(ctx, "mystery")

			Convey("Then the population is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(pop, ShouldBeEmpty)
			})
		})

		Convey("When an observation targets an unregistered metric", func() {
			err := s.AddObservation(ctx, obs("a", "mystery", 1, true))

			So(err, ShouldEqual, repository.ErrMetricNotFound)
		})
	})
}

func TestMemStore_BestByMetric(t *testing.T) {
	Convey("Given metrics with opposite directions", t, func() {
		ctx := context.Background()
		s := repository.NewMemStore()
		So(s.PutMetric(ctx, model.MetricDefinition{ID: "deadlift_kg", ClassID: "strength", HigherIsBetter: true}), ShouldBeNil)
		So(s.PutMetric(ctx, model.MetricDefinition{ID: "sprint_40m", ClassID: "speed", HigherIsBetter: false}), ShouldBeNil)

		So(s.AddObservation(ctx, obs("a", "deadlift_kg", 180, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("a", "deadlift_kg", 200, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("a", "deadlift_kg", 240, false)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("a", "sprint_40m", 5.2, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("a", "sprint_40m", 4.9, true)), ShouldBeNil)
		So(s.AddObservation(ctx, obs("b", "sprint_40m", 4.4, true)), ShouldBeNil)

		Convey("When the user's bests are reduced", func() {
			best, err := s.BestByMetric(ctx, "a")

			Convey("Then each metric keeps its direction-aware best counted value", func() {
				So(err, ShouldBeNil)
				So(best, ShouldHaveLength, 2)
				So(best["deadlift_kg"], ShouldEqual, 200)
				So(best["sprint_40m"], ShouldEqual, 4.9)
			})
		})

		Convey("When the user has no observations", func() {
			best, err := s.BestByMetric(ctx, "ghost")

			So(err, ShouldBeNil)
			So(best, ShouldBeEmpty)
		})

		Convey("When counted observations are tallied", func() {
			n, err := s.ObservationCount(ctx, "a")

			Convey("Then excluded observations do not count", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})
		})
	})
}

func TestMemStore_Users(t *testing.T) {
	Convey("Given a store with two profiles", t, func() {
		ctx := context.Background()
		s := repository.NewMemStore()
		So(s.PutUser(ctx, model.UserProfile{ID: "a", DisplayName: "Ada"}), ShouldBeNil)
		So(s.PutUser(ctx, model.UserProfile{ID: "b", DisplayName: "Bo"}), ShouldBeNil)

		Convey("When a known user is fetched", func() {
			u, err := s.User(ctx, "a")

			So(err, ShouldBeNil)
			So(u.DisplayName, ShouldEqual, "Ada")
		})

		Convey("When an unknown user is fetched", func() {
			_, err := s.User(ctx, "ghost")

			So(err, ShouldEqual, repository.ErrUserNotFound)
		})

		Convey("When a profile is upserted again", func() {
			So(s.PutUser(ctx, model.UserProfile{ID: "a", DisplayName: "Ada L."}), ShouldBeNil)

			all, err := s.Users(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)

			u, err := s.User(ctx, "a")
			So(err, ShouldBeNil)
			So(u.DisplayName, ShouldEqual, "Ada L.")
		})
	})
}
