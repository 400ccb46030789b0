package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleConfig = `
app:
  name: vigil
  log_level: debug

backup:
  root: /var/backups/vigil
  retention_days: 14

applications:
  - name: blog
    containers: [blog-web, blog-worker]
    database:
      type: postgresql
      container: blog-db
      database: blogdb
      username: postgres
      schedule: "0 0 4 * * *"
      retention_days: 30
  - name: static-site
    containers: [static-site]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a config file", t, func() {
		Convey("When loading a valid file", func() {
			cfg, err := Load(writeConfig(t, sampleConfig))

			Convey("It should parse the roster", func() {
				So(err, ShouldBeNil)
				So(len(cfg.Applications), ShouldEqual, 2)
				So(cfg.Applications[0].Name, ShouldEqual, "blog")
				So(cfg.Applications[0].Database.Type, ShouldEqual, "postgresql")
				So(cfg.Applications[1].Database, ShouldBeNil)
			})

			Convey("It should apply defaults the file omits", func() {
				So(cfg.App.Name, ShouldEqual, "vigil")
				So(cfg.Monitor.CacheTTLSeconds, ShouldEqual, 5)
				So(cfg.Backup.DefaultSchedule, ShouldEqual, "0 0 2 * * *")
				So(cfg.Backup.TimeoutMinutes, ShouldEqual, 30)
			})

			Convey("Helpers resolve per-application fallbacks", func() {
				blog := cfg.FindApplication("blog")
				So(blog, ShouldNotBeNil)
				So(cfg.ScheduleFor(blog), ShouldEqual, "0 0 4 * * *")
				So(cfg.RetentionFor(blog), ShouldEqual, 30)

				site := cfg.FindApplication("static-site")
				So(cfg.ScheduleFor(site), ShouldEqual, "0 0 2 * * *")
				So(cfg.RetentionFor(site), ShouldEqual, 14)

				So(cfg.FindApplication("nope"), ShouldBeNil)
				So(len(cfg.BackupApplications()), ShouldEqual, 1)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := Load("/nonexistent/config.yaml")

			Convey("It should fail to read", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given config structures", t, func() {
		valid := func() *Config {
			return &Config{
				Backup: BackupConfig{Root: "/var/backups"},
				Applications: []ApplicationConfig{
					{Name: "blog", Containers: []string{"blog-web"}},
				},
			}
		}

		Convey("A minimal valid config passes", func() {
			So(valid().Validate(), ShouldBeNil)
		})

		Convey("An empty roster is rejected", func() {
			cfg := valid()
			cfg.Applications = nil
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A nameless application is rejected", func() {
			cfg := valid()
			cfg.Applications[0].Name = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Duplicate application names are rejected", func() {
			cfg := valid()
			cfg.Applications = append(cfg.Applications, cfg.Applications[0])
			err := cfg.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "duplicate")
		})

		Convey("An application with neither containers nor database is rejected", func() {
			cfg := valid()
			cfg.Applications[0].Containers = nil
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A database missing its engine type is rejected", func() {
			cfg := valid()
			cfg.Applications[0].Database = &DatabaseConfig{Container: "db", Database: "x"}
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("A missing backup root is rejected", func() {
			cfg := valid()
			cfg.Backup.Root = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}
