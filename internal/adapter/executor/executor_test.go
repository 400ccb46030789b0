package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/vigil/internal/domain"
)

func TestShell(t *testing.T) {
	Convey("Given a Shell executor", t, func() {
		ctx := context.Background()

		Convey("When running a command that writes to stdout", func() {
			shell := NewShell(time.Minute)
			result, err := shell.Run(ctx, "printf hello")

			Convey("It should capture stdout and a zero exit code", func() {
				So(err, ShouldBeNil)
				So(result.Stdout, ShouldEqual, "hello")
				So(result.Stderr, ShouldBeEmpty)
				So(result.ExitCode, ShouldEqual, 0)
			})
		})

		Convey("When running a command that writes to stderr", func() {
			shell := NewShell(time.Minute)
			result, err := shell.Run(ctx, "printf oops 1>&2")

			Convey("It should capture stderr separately", func() {
				So(err, ShouldBeNil)
				So(result.Stdout, ShouldBeEmpty)
				So(result.Stderr, ShouldEqual, "oops")
				So(result.ExitCode, ShouldEqual, 0)
			})
		})

		Convey("When the command exits non-zero", func() {
			shell := NewShell(time.Minute)
			result, err := shell.Run(ctx, "exit 3")

			Convey("It should report the exit code in the result, not as an error", func() {
				So(err, ShouldBeNil)
				So(result.ExitCode, ShouldEqual, 3)
			})
		})

		Convey("When the command supports a pipeline", func() {
			shell := NewShell(time.Minute)
			result, err := shell.Run(ctx, "printf 'a\nb\nc' | wc -l")

			Convey("It should run the whole pipeline", func() {
				So(err, ShouldBeNil)
				So(result.ExitCode, ShouldEqual, 0)
			})
		})

		Convey("When the command outlives the timeout", func() {
			shell := NewShell(100 * time.Millisecond)
			start := time.Now()
			_, err := shell.Run(ctx, "sleep 5")

			Convey("It should be killed and reported as an execution failure", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, domain.ErrExecutionFailed), ShouldBeTrue)
				So(time.Since(start), ShouldBeLessThan, 3*time.Second)
			})
		})
	})
}
