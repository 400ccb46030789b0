package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRetentionCleanup(t *testing.T) {
	Convey("Given artifacts of varying age", t, func() {
		root, err := os.MkdirTemp("", "retention_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(root)

		cfg := testConfig(root)
		uc := NewRetention(cfg, nil, nopLogger{})
		ctx := context.Background()

		now := time.Now()
		fresh := artifactName("blog", "postgresql", now.AddDate(0, 0, -1))
		stale := artifactName("blog", "postgresql", now.AddDate(0, 0, -8))
		ancient := artifactName("blog", "postgresql", now.AddDate(0, 0, -30))

		So(os.MkdirAll(filepath.Join(root, "blog"), 0755), ShouldBeNil)
		for _, name := range []string{fresh, stale, ancient} {
			So(os.WriteFile(filepath.Join(root, "blog", name), []byte("dump"), 0644), ShouldBeNil)
		}

		Convey("When cleaning with a 7 day window", func() {
			deleted, err := uc.Cleanup(ctx, "blog", 7)

			Convey("It should delete exactly the artifacts past the cutoff", func() {
				So(err, ShouldBeNil)
				So(deleted, ShouldEqual, 2)

				_, freshErr := os.Stat(filepath.Join(root, "blog", fresh))
				So(freshErr, ShouldBeNil)

				for _, gone := range []string{stale, ancient} {
					_, statErr := os.Stat(filepath.Join(root, "blog", gone))
					So(os.IsNotExist(statErr), ShouldBeTrue)
				}
			})

			Convey("And repeating the cleanup deletes nothing", func() {
				again, err := uc.Cleanup(ctx, "blog", 7)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, 0)
			})
		})

		Convey("When the application has no artifact directory", func() {
			deleted, err := uc.Cleanup(ctx, "shop", 7)

			Convey("It should delete zero without an error", func() {
				So(err, ShouldBeNil)
				So(deleted, ShouldEqual, 0)
			})
		})

		Convey("When a filename carries no parseable timestamp", func() {
			odd := filepath.Join(root, "blog", "manual-export.sql.gz")
			So(os.WriteFile(odd, []byte("dump"), 0644), ShouldBeNil)

			old := now.Add(-20 * 24 * time.Hour)
			So(os.Chtimes(odd, old, old), ShouldBeNil)

			deleted, err := uc.Cleanup(ctx, "blog", 7)

			Convey("The modification time decides instead", func() {
				So(err, ShouldBeNil)
				So(deleted, ShouldEqual, 3)

				_, statErr := os.Stat(odd)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}

func TestSweepAll(t *testing.T) {
	Convey("Given artifacts for every backed-up application", t, func() {
		root, err := os.MkdirTemp("", "sweep_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(root)

		cfg := testConfig(root)
		uc := NewRetention(cfg, nil, nopLogger{})

		now := time.Now()
		blogStale := artifactName("blog", "postgresql", now.AddDate(0, 0, -9))
		legacyFresh := artifactName("legacy", "oracle", now)

		So(os.MkdirAll(filepath.Join(root, "blog"), 0755), ShouldBeNil)
		So(os.MkdirAll(filepath.Join(root, "legacy"), 0755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(root, "blog", blogStale), []byte("x"), 0644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(root, "legacy", legacyFresh), []byte("y"), 0644), ShouldBeNil)

		Convey("When sweeping all applications", func() {
			uc.SweepAll(context.Background())

			Convey("Expired artifacts are gone, fresh ones survive", func() {
				_, staleErr := os.Stat(filepath.Join(root, "blog", blogStale))
				So(os.IsNotExist(staleErr), ShouldBeTrue)

				_, freshErr := os.Stat(filepath.Join(root, "legacy", legacyFresh))
				So(freshErr, ShouldBeNil)
			})
		})
	})
}
