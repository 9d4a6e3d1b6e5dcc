package frames_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/dscore/internal/domain/frames"
	"github.com/okian/dscore/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAlign(t *testing.T) {
	Convey("Given reference and system turns for one recording", t, func() {
		ref := model.Recordings{"rec1": {
			{SpeakerID: "S1", Onset: 0, Offset: 5},
			{SpeakerID: "S2", Onset: 3, Offset: 8},
		}}
		sys := model.Recordings{"rec1": {
			{SpeakerID: "S1", Onset: 0, Offset: 4},
			{SpeakerID: "S2", Onset: 4, Offset: 8},
		}}

		Convey("When aligned", func() {
			a, err := frames.Align(ref, sys, 1.0)

			Convey("Then both sides have the same length", func() {
				So(err, ShouldBeNil)
				So(a.RecordingIDs, ShouldResemble, []string{"rec1"})
				So(cmp.Diff([]int{1, 1, 1, 3, 3, 2, 2, 2}, a.Ref), ShouldBeEmpty)
				So(cmp.Diff([]int{1, 1, 1, 1, 2, 2, 2, 2}, a.Sys), ShouldBeEmpty)
			})
		})

		Convey("When the system stops early", func() {
			sys["rec1"][1].Offset = 6
			a, err := frames.Align(ref, sys, 1.0)

			Convey("Then only the span annotated by both is labeled", func() {
				So(err, ShouldBeNil)
				So(len(a.Ref), ShouldEqual, 6)
				So(len(a.Sys), ShouldEqual, 6)
			})
		})

		Convey("When aligned as a single recording", func() {
			p, err := frames.AlignSingle(ref, sys, 1.0)

			Convey("Then string labels are available for both sides", func() {
				So(err, ShouldBeNil)
				So(p.RecordingID, ShouldEqual, "rec1")
				So(p.Ref.Strings()[3], ShouldEqual, "S1_S2")
				So(p.Sys.Strings()[3], ShouldEqual, "S1")
			})
		})
	})

	Convey("Given two recordings that reuse a speaker name", t, func() {
		ref := model.Recordings{
			"rec1": {{SpeakerID: "A", Onset: 0, Offset: 2}},
			"rec2": {{SpeakerID: "A", Onset: 0, Offset: 2}},
		}
		sys := model.Recordings{
			"rec1": {{SpeakerID: "A", Onset: 0, Offset: 2}},
			"rec2": {{SpeakerID: "A", Onset: 0, Offset: 2}},
			"rec3": {{SpeakerID: "A", Onset: 0, Offset: 2}},
		}

		Convey("When aligned", func() {
			a, err := frames.Align(ref, sys, 1.0)

			Convey("Then each recording gets its own label space", func() {
				So(err, ShouldBeNil)
				So(a.RecordingIDs, ShouldResemble, []string{"rec1", "rec2"})
				So(cmp.Diff([]int{1, 1, 2, 2}, a.Ref), ShouldBeEmpty)
				So(cmp.Diff([]int{1, 1, 2, 2}, a.Sys), ShouldBeEmpty)
			})
		})

		Convey("When the second recording has non-speech", func() {
			ref["rec2"] = []model.Turn{{SpeakerID: "A", Onset: 1, Offset: 3}}
			sys["rec2"] = []model.Turn{{SpeakerID: "A", Onset: 0, Offset: 3}}
			a, err := frames.Align(ref, sys, 1.0)

			Convey("Then no label is shared across recordings", func() {
				So(err, ShouldBeNil)
				// rec1: A=1. rec2 shifted by 1: non-speech=2+1, A=1+1.
				So(cmp.Diff([]int{1, 1, 3, 2, 2}, a.Ref), ShouldBeEmpty)
				So(cmp.Diff([]int{1, 1, 2, 2, 2}, a.Sys), ShouldBeEmpty)
			})
		})
	})

	Convey("Given recordings with the largest speaker count", t, func() {
		// Frame 0 is non-speech, frame 1 has s00 alone, frame 2 has all 62
		// speakers, so raw labels are 1<<62, 1 and 1<<62-1.
		crowd := func() []model.Turn {
			turns := []model.Turn{{SpeakerID: "s00", Onset: 1, Offset: 3}}
			for i := 1; i < 62; i++ {
				turns = append(turns, model.Turn{SpeakerID: fmt.Sprintf("s%02d", i), Onset: 2, Offset: 3})
			}
			return turns
		}
		ref := model.Recordings{"r1": crowd(), "r2": crowd(), "r3": crowd()}
		sys := model.Recordings{
			"r1": {{SpeakerID: "X", Onset: 0, Offset: 3}},
			"r2": {{SpeakerID: "X", Onset: 0, Offset: 3}},
			"r3": {{SpeakerID: "X", Onset: 0, Offset: 3}},
		}

		Convey("When three of them are aligned", func() {
			a, err := frames.Align(ref, sys, 1.0)

			Convey("Then labels stay small and distinct across recordings", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff([]int{3, 1, 2, 6, 4, 5, 9, 7, 8}, a.Ref), ShouldBeEmpty)
				So(cmp.Diff([]int{1, 1, 1, 2, 2, 2, 3, 3, 3}, a.Sys), ShouldBeEmpty)
			})
		})
	})

	Convey("Given inputs that cannot be aligned", t, func() {
		one := model.Recordings{"rec1": {{SpeakerID: "A", Onset: 0, Offset: 2}}}
		other := model.Recordings{"rec9": {{SpeakerID: "A", Onset: 0, Offset: 2}}}
		two := model.Recordings{
			"rec1": {{SpeakerID: "A", Onset: 0, Offset: 2}},
			"rec2": {{SpeakerID: "A", Onset: 0, Offset: 2}},
		}

		Convey("When no recording is shared", func() {
			_, err := frames.Align(one, other, 1.0)

			Convey("Then alignment fails", func() {
				So(errors.Is(err, frames.ErrAlignment), ShouldBeTrue)
			})
		})

		Convey("When a single-recording input holds two recordings", func() {
			_, err := frames.AlignSingle(two, one, 1.0)

			Convey("Then alignment fails", func() {
				So(errors.Is(err, frames.ErrAlignment), ShouldBeTrue)
			})
		})

		Convey("When single recordings have different ids", func() {
			_, err := frames.AlignSingle(one, other, 1.0)

			Convey("Then alignment fails", func() {
				So(errors.Is(err, frames.ErrAlignment), ShouldBeTrue)
			})
		})

		Convey("When a shared recording has no turns", func() {
			_, err := frames.Align(one, model.Recordings{"rec1": nil}, 1.0)

			Convey("Then the input is malformed", func() {
				So(errors.Is(err, model.ErrMalformedInput), ShouldBeTrue)
			})
		})
	})
}
