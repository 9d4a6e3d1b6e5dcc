package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		ctx := context.Background()

		Convey("When created at info level", func() {
			l, err := New(&buf, "info")
			So(err, ShouldBeNil)
			l.Info(ctx, "scored", String("file_id", "EN2001a"), Float64("der", 11.5))
			l.Debug(ctx, "hidden")

			Convey("Then fields are written and debug is dropped", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=scored")
				So(out, ShouldContainSubstring, "file_id=EN2001a")
				So(out, ShouldContainSubstring, "der=11.5")
				So(out, ShouldContainSubstring, "source=")
				So(out, ShouldContainSubstring, "logger_test.go")
				So(out, ShouldNotContainSubstring, "hidden")
			})
		})

		Convey("When named", func() {
			l, err := New(&buf, "debug")
			So(err, ShouldBeNil)
			l.Named("batch").Warn(ctx, "skipped", Error(errors.New("missing")))

			Convey("Then the name is attached", func() {
				So(buf.String(), ShouldContainSubstring, "logger=batch")
				So(buf.String(), ShouldContainSubstring, "error=missing")
				So(buf.String(), ShouldContainSubstring, "level=WARN")
			})
		})

		Convey("When the level is unknown", func() {
			_, err := New(&buf, "loud")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseLevel(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, name := range []string{"debug", "INFO", "", "warn", "Warning", "error"} {
			_, err := ParseLevel(name)
			So(err, ShouldBeNil)
		}
		_, err := ParseLevel("trace")
		So(err, ShouldNotBeNil)
	})
}

func TestGlobal(t *testing.T) {
	Convey("Given the process logger", t, func() {
		Convey("Then Get works before Init", func() {
			So(func() { Get().Info(context.Background(), "noop") }, ShouldNotPanic)
		})

		Convey("Then Init installs a logger", func() {
			So(Init("error"), ShouldBeNil)
			So(Named("test"), ShouldNotBeNil)
		})

		Convey("Then Init rejects a bad level", func() {
			So(Init("nope"), ShouldNotBeNil)
		})
	})
}
