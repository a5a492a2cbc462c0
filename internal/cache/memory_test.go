package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/podiumlab/podium/internal/cache"
	"github.com/podiumlab/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemory_GetSet(t *testing.T) {
	Convey("Given an in-memory cache with a stepping clock", t, func() {
		now := time.Unix(1000, 0)
		clock := func() time.Time { return now }
		c := cache.NewMemory(cache.WithTTL(60*time.Second), cache.WithClock(clock))
		ctx := context.Background()

		bundle := model.RatingBundle{
			UserID:        "user-1",
			OverallRating: 1450,
			Tier:          "Gold",
		}

		Convey("When a bundle is stored and read back within the TTL", func() {
			c.Set(ctx, "user-1", bundle)
			now = now.Add(30 * time.Second)

			got, ok := c.Get(ctx, "user-1")

			Convey("Then the stored bundle comes back intact", func() {
				So(ok, ShouldBeTrue)
				So(got.UserID, ShouldEqual, "user-1")
				So(got.OverallRating, ShouldEqual, 1450)
				So(got.Tier, ShouldEqual, "Gold")
			})
		})

		Convey("When the clock steps to exactly the TTL boundary", func() {
			c.Set(ctx, "user-1", bundle)
			now = now.Add(60 * time.Second)

			_, ok := c.Get(ctx, "user-1")

			Convey("Then the entry counts as expired", func() {
				So(ok, ShouldBeFalse)
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a key was never stored", func() {
			_, ok := c.Get(ctx, "nobody")

			So(ok, ShouldBeFalse)
		})

		Convey("When a fresh Set overwrites an older entry", func() {
			c.Set(ctx, "user-1", bundle)
			now = now.Add(50 * time.Second)
			refreshed := bundle
			refreshed.OverallRating = 1600
			c.Set(ctx, "user-1", refreshed)
			now = now.Add(30 * time.Second)

			got, ok := c.Get(ctx, "user-1")

			Convey("Then the refreshed entry restarts the TTL window", func() {
				So(ok, ShouldBeTrue)
				So(got.OverallRating, ShouldEqual, 1600)
			})
		})
	})
}

func TestMemory_Invalidate(t *testing.T) {
	Convey("Given a cache holding one entry", t, func() {
		c := cache.NewMemory()
		ctx := context.Background()
		c.Set(ctx, "user-1", model.RatingBundle{UserID: "user-1"})

		Convey("When that entry is invalidated", func() {
			c.Invalidate(ctx, "user-1")

			Convey("Then the next read misses", func() {
				_, ok := c.Get(ctx, "user-1")
				So(ok, ShouldBeFalse)
				So(c.Len(), ShouldEqual, 0)
			})
		})

		Convey("When an absent key is invalidated", func() {
			c.Invalidate(ctx, "ghost")

			Convey("Then nothing else is disturbed", func() {
				_, ok := c.Get(ctx, "user-1")
				So(ok, ShouldBeTrue)
				So(c.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestMemory_Concurrency(t *testing.T) {
	Convey("Given many goroutines hammering the same cache", t, func() {
		c := cache.NewMemory()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := fmt.Sprintf("user-%d", n%4)
				for j := 0; j < 200; j++ {
					c.Set(ctx, id, model.RatingBundle{UserID: id})
					c.Get(ctx, id)
					if j%50 == 0 {
						c.Invalidate(ctx, id)
					}
				}
			}(i)
		}
		wg.Wait()

		Convey("Then the cache stays internally consistent", func() {
			So(c.Len(), ShouldBeBetweenOrEqual, 0, 4)
		})
	})
}
