// Package frames converts speaker turns into fixed-step frame labels.
//
// Each frame carries one integer label encoding the set of speakers active
// in it: bit i is set when the i-th speaker (in sorted order) is active, and
// frames with no active speaker get the reserved non-speech bit. Frames with
// overlapping speech therefore form their own class, distinct from either
// speaker alone and from non-speech.
package frames

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/dscore/internal/domain/model"
)

// Default labeling constants.
const (
	// DefaultStep is the frame step in seconds.
	DefaultStep = 0.010

	// NonSpeech names the class of frames in which no speaker is active.
	NonSpeech = "non-speech"

	// maxSpeakers keeps every subset label, including the non-speech bit,
	// inside a non-negative int64.
	maxSpeakers = 62
)

// Labeling is the frame-level labeling of a single recording.
type Labeling struct {
	// Labels holds one label per frame.
	Labels []int

	// Classes maps bit positions to class names: the sorted speaker ids
	// followed by NonSpeech.
	Classes []string
}

// Label returns the frame labels for turns over [0, dur) at the given step.
// Frame i covers [i*step, (i+1)*step) and is active for a turn when
// onset <= i*step < offset. Turns extending past dur are clipped.
func Label(turns []model.Turn, dur, step float64) (Labeling, error) {
	if !(step > 0) {
		return Labeling{}, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}

	speakers := speakerIDs(turns)
	if len(speakers) > maxSpeakers {
		return Labeling{}, fmt.Errorf("%w: %d speakers (max %d)", ErrTooManySpeakers, len(speakers), maxSpeakers)
	}
	bits := make(map[string]int, len(speakers))
	for i, s := range speakers {
		bits[s] = i
	}

	n := 0
	if dur > 0 {
		n = int(dur / step)
	}
	labels := make([]int, n)
	for _, t := range turns {
		bit := 1 << bits[t.SpeakerID]
		for i, end := frameIndex(t.Onset, n, step), frameIndex(t.Offset, n, step); i < end; i++ {
			labels[i] |= bit
		}
	}
	nonSpeech := 1 << len(speakers)
	for i, l := range labels {
		if l == 0 {
			labels[i] = nonSpeech
		}
	}

	return Labeling{
		Labels:  labels,
		Classes: append(speakers, NonSpeech),
	}, nil
}

// frameIndex returns the number of frame start times strictly below t.
func frameIndex(t float64, n int, step float64) int {
	return sort.Search(n, func(i int) bool { return step*float64(i) >= t })
}

func speakerIDs(turns []model.Turn) []string {
	seen := make(map[string]struct{}, len(turns))
	ids := make([]string, 0)
	for _, t := range turns {
		if _, ok := seen[t.SpeakerID]; ok {
			continue
		}
		seen[t.SpeakerID] = struct{}{}
		ids = append(ids, t.SpeakerID)
	}
	sort.Strings(ids)
	return ids
}

// Decode returns the class name of label: the underscore-joined names of
// the classes whose bits are set, in class order.
func (l Labeling) Decode(label int) string {
	var names []string
	for i, c := range l.Classes {
		if label&(1<<i) != 0 {
			names = append(names, c)
		}
	}
	return strings.Join(names, "_")
}

// Strings returns the labels decoded to class names.
func (l Labeling) Strings() []string {
	decoded := make(map[int]string)
	out := make([]string, len(l.Labels))
	for i, label := range l.Labels {
		name, ok := decoded[label]
		if !ok {
			name = l.Decode(label)
			decoded[label] = name
		}
		out[i] = name
	}
	return out
}

// Len returns the number of frames.
func (l Labeling) Len() int { return len(l.Labels) }
