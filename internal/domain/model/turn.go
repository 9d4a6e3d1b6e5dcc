// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"sort"
)

// Turn is a single interval during which one speaker is active.
// Onset and Offset are in seconds from the start of the recording.
type Turn struct {
	SpeakerID string
	Onset     float64
	Offset    float64
}

// NewTurn validates and returns a Turn.
func NewTurn(speakerID string, onset, offset float64) (Turn, error) {
	t := Turn{SpeakerID: speakerID, Onset: onset, Offset: offset}
	if err := t.Validate(); err != nil {
		return Turn{}, err
	}
	return t, nil
}

// Validate reports whether the turn satisfies 0 <= onset < offset.
func (t Turn) Validate() error {
	switch {
	case t.Onset < 0:
		return fmt.Errorf("%w: speaker %q onset %.3f is negative", ErrMalformedInput, t.SpeakerID, t.Onset)
	case t.Offset <= t.Onset:
		return fmt.Errorf("%w: speaker %q offset %.3f not after onset %.3f", ErrMalformedInput, t.SpeakerID, t.Offset, t.Onset)
	}
	return nil
}

// Duration returns the length of the turn in seconds.
func (t Turn) Duration() float64 { return t.Offset - t.Onset }

func (t Turn) String() string {
	return fmt.Sprintf("Speaker: %s, Onset: %.2f, Offset: %.2f", t.SpeakerID, t.Onset, t.Offset)
}

// Duration returns the recording duration implied by turns: the maximum offset.
func Duration(turns []Turn) (float64, error) {
	if len(turns) == 0 {
		return 0, fmt.Errorf("%w: no turns to determine duration", ErrMalformedInput)
	}
	dur := turns[0].Offset
	for _, t := range turns[1:] {
		if t.Offset > dur {
			dur = t.Offset
		}
	}
	return dur, nil
}

// Recordings maps recording ids to their speaker turns.
type Recordings map[string][]Turn

// Add appends a turn to the recording identified by recID.
func (r Recordings) Add(recID string, t Turn) {
	r[recID] = append(r[recID], t)
}

// IDs returns the recording ids in sorted order.
func (r Recordings) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Common returns the sorted ids present in both r and other.
func (r Recordings) Common(other Recordings) []string {
	var ids []string
	for id := range r {
		if _, ok := other[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
