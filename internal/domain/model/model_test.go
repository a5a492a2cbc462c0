package model_test

import (
	"testing"
	"time"

	"github.com/podiumlab/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUserProfile_Onboarded(t *testing.T) {
	Convey("Given user profiles in various states", t, func() {
		complete := model.UserProfile{
			ID:          "u-1",
			DisplayName: "Ada",
			DateOfBirth: time.Date(1996, 3, 14, 0, 0, 0, 0, time.UTC),
			Gender:      "female",
		}

		Convey("When all required fields are present", func() {
			So(complete.Onboarded(), ShouldBeTrue)
		})

		Convey("When the display name is missing", func() {
			u := complete
			u.DisplayName = ""
			So(u.Onboarded(), ShouldBeFalse)
		})

		Convey("When the birth date is missing", func() {
			u := complete
			u.DateOfBirth = time.Time{}
			So(u.Onboarded(), ShouldBeFalse)
		})

		Convey("When the gender is missing", func() {
			u := complete
			u.Gender = ""
			So(u.Onboarded(), ShouldBeFalse)
		})
	})
}

func TestUserProfile_AgeAt(t *testing.T) {
	Convey("Given a profile born on the 14th of March 1996", t, func() {
		u := model.UserProfile{
			DateOfBirth: time.Date(1996, 3, 14, 0, 0, 0, 0, time.UTC),
		}

		Convey("When evaluated after the birthday that year", func() {
			So(u.AgeAt(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 30)
		})

		Convey("When evaluated before the birthday that year", func() {
			So(u.AgeAt(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 29)
		})

		Convey("When evaluated on the birthday itself", func() {
			So(u.AgeAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)), ShouldEqual, 30)
		})
	})

	Convey("Given a profile without a birth date", t, func() {
		u := model.UserProfile{}

		So(u.AgeAt(time.Now()), ShouldEqual, 0)
	})

	Convey("Given a birth date in the future", t, func() {
		u := model.UserProfile{
			DateOfBirth: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		Convey("Then the age clamps at zero", func() {
			So(u.AgeAt(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 0)
		})
	})
}

func TestUserProfile_BMI(t *testing.T) {
	Convey("Given complete body measurements", t, func() {
		u := model.UserProfile{HeightCm: 170, WeightKg: 63.58}

		Convey("Then BMI follows kilograms over squared meters", func() {
			So(u.BMI(), ShouldAlmostEqual, 22.0, 0.01)
		})
	})

	Convey("Given missing measurements", t, func() {
		So(model.UserProfile{WeightKg: 70}.BMI(), ShouldEqual, 0)
		So(model.UserProfile{HeightCm: 170}.BMI(), ShouldEqual, 0)
		So(model.UserProfile{}.BMI(), ShouldEqual, 0)
	})
}
