package der_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/okian/dscore/internal/adapters/der"
	. "github.com/smartystreets/goconvey/convey"
)

// writeScript writes an executable shell script that records its arguments
// to argsFile and prints body.
func writeScript(t *testing.T, dir, body string, exit int) (string, string) {
	t.Helper()
	argsFile := filepath.Join(dir, "args.txt")
	script := filepath.Join(dir, "md-eval.sh")
	content := "#!/bin/sh\n" +
		"echo \"$@\" > " + argsFile + "\n" +
		"cat <<'OUT'\n" + body + "\nOUT\n" +
		"echo noise >&2\n" +
		"exit " + strconv.Itoa(exit) + "\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return script, argsFile
}

func TestMDEval(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	Convey("Given an md-eval executable", t, func() {
		dir := t.TempDir()
		ctx := context.Background()

		Convey("When it reports an overall error", func() {
			report := " SCORED SPEAKER TIME = 120.00 secs\n OVERALL SPEAKER DIARIZATION ERROR = 11.52 percent of scored speaker time  `(ALL)"
			bin, argsFile := writeScript(t, dir, report, 0)
			v, err := der.NewMDEval(bin).Score(ctx, "ref.rttm", "sys.rttm", der.DefaultOptions())

			Convey("Then the percentage is parsed", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 11.52)
			})

			Convey("Then the collar and overlap flag are passed", func() {
				args, err := os.ReadFile(argsFile)
				So(err, ShouldBeNil)
				So(strings.TrimSpace(string(args)), ShouldEqual, "-r ref.rttm -s sys.rttm -c 0.25 -1")
			})
		})

		Convey("When overlaps are scored", func() {
			bin, argsFile := writeScript(t, dir, "OVERALL SPEAKER DIARIZATION ERROR = 3.00", 0)
			_, err := der.NewMDEval(bin).Score(ctx, "r", "s", der.Options{Collar: 0})
			So(err, ShouldBeNil)

			args, _ := os.ReadFile(argsFile)
			So(strings.TrimSpace(string(args)), ShouldEqual, "-r r -s s -c 0")
		})

		Convey("When it exits non-zero", func() {
			bin, _ := writeScript(t, dir, "OVERALL SPEAKER DIARIZATION ERROR = 3.00", 1)
			_, err := der.NewMDEval(bin).Score(ctx, "r", "s", der.DefaultOptions())
			So(errors.Is(err, der.ErrScorerFailure), ShouldBeTrue)
		})

		Convey("When the output has no overall line", func() {
			bin, _ := writeScript(t, dir, "nothing useful", 0)
			_, err := der.NewMDEval(bin).Score(ctx, "r", "s", der.DefaultOptions())
			So(errors.Is(err, der.ErrScorerFailure), ShouldBeTrue)
		})

		Convey("When the binary does not exist", func() {
			_, err := der.NewMDEval(filepath.Join(dir, "missing")).Score(ctx, "r", "s", der.DefaultOptions())
			So(errors.Is(err, der.ErrScorerFailure), ShouldBeTrue)
		})
	})
}

func TestStub(t *testing.T) {
	Convey("Given a stub scorer", t, func() {
		Convey("Then it returns its fixed value", func() {
			v, err := der.Stub{Value: 7.5}.Score(context.Background(), "", "", der.Options{})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7.5)
		})

		Convey("Then a configured error is returned", func() {
			_, err := der.Stub{Err: der.ErrScorerFailure}.Score(context.Background(), "", "", der.Options{})
			So(err, ShouldEqual, der.ErrScorerFailure)
		})

		Convey("Then a cancelled context wins", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := der.Stub{Value: 1}.Score(ctx, "", "", der.Options{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
