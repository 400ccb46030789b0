package usecase

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSpeedCache(t *testing.T) {
	Convey("Given a SpeedCache", t, func() {
		cache := NewSpeedCache()
		base := time.Now()

		Convey("When an interface is observed for the first time", func() {
			rx, tx := cache.Rate("eth0", 1000, 500, base)

			Convey("It should yield zero and seed the cache", func() {
				So(rx, ShouldEqual, 0)
				So(tx, ShouldEqual, 0)
			})

			Convey("And a second sample 2 seconds later with rx delta 1000", func() {
				rx, tx := cache.Rate("eth0", 2000, 1500, base.Add(2*time.Second))

				Convey("It should yield 500 bytes per second", func() {
					So(rx, ShouldEqual, 500)
					So(tx, ShouldEqual, 500)
				})
			})
		})

		Convey("When a counter runs backwards", func() {
			cache.Rate("eth1", 5000, 5000, base)
			rx, tx := cache.Rate("eth1", 100, 100, base.Add(time.Second))

			Convey("It should yield zero instead of a negative rate", func() {
				So(rx, ShouldEqual, 0)
				So(tx, ShouldEqual, 0)
			})

			Convey("And the reset value reseeds the cache", func() {
				rx, _ := cache.Rate("eth1", 1100, 100, base.Add(2*time.Second))
				So(rx, ShouldEqual, 1000)
			})
		})

		Convey("When two keys share the same interface suffix", func() {
			cache.Rate("abc123/eth0", 1000, 0, base)
			cache.Rate("def456/eth0", 9000, 0, base)

			rx1, _ := cache.Rate("abc123/eth0", 2000, 0, base.Add(time.Second))
			rx2, _ := cache.Rate("def456/eth0", 9500, 0, base.Add(time.Second))

			Convey("They should not collide", func() {
				So(rx1, ShouldEqual, 1000)
				So(rx2, ShouldEqual, 500)
			})
		})

		Convey("When the elapsed time is zero", func() {
			cache.Rate("eth2", 100, 100, base)
			rx, tx := cache.Rate("eth2", 200, 200, base)

			Convey("It should yield zero instead of dividing by zero", func() {
				So(rx, ShouldEqual, 0)
				So(tx, ShouldEqual, 0)
			})
		})
	})
}
