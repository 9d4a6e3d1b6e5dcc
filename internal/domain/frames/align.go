package frames

import (
	"fmt"
	"slices"

	"github.com/okian/dscore/internal/domain/model"
)

// Aligned holds reference and system frame labels concatenated over every
// recording shared by both inputs.
type Aligned struct {
	RecordingIDs []string
	Ref          []int
	Sys          []int
}

// Pair is the labeling of the one recording scored in single-recording
// contexts.
type Pair struct {
	RecordingID string
	Ref         Labeling
	Sys         Labeling
}

// Align labels every recording present in both ref and sys and concatenates
// the results. Recordings present in only one input are skipped.
//
// Labels restart at 1 in each recording, so before concatenation every
// recording's distinct labels are renumbered to consecutive ids following the
// last id emitted so far, kept separately for each side. Frames from
// different recordings never share a label, and no label exceeds the number
// of frames.
func Align(ref, sys model.Recordings, step float64) (Aligned, error) {
	ids := ref.Common(sys)
	if len(ids) == 0 {
		return Aligned{}, fmt.Errorf("%w: no recordings in common", ErrAlignment)
	}

	out := Aligned{RecordingIDs: ids}
	var maxRef, maxSys int
	for _, id := range ids {
		p, err := labelRecording(id, ref[id], sys[id], step)
		if err != nil {
			return Aligned{}, err
		}
		out.Ref, maxRef = appendShifted(out.Ref, p.Ref.Labels, maxRef)
		out.Sys, maxSys = appendShifted(out.Sys, p.Sys.Labels, maxSys)
	}
	return out, nil
}

// AlignSingle labels the single recording shared by ref and sys. Both inputs
// must contain exactly one recording, with the same id.
func AlignSingle(ref, sys model.Recordings, step float64) (Pair, error) {
	if len(ref) > 1 || len(sys) > 1 {
		return Pair{}, fmt.Errorf("%w: expected one recording, got %d reference and %d system",
			ErrAlignment, len(ref), len(sys))
	}
	ids := ref.Common(sys)
	if len(ids) != 1 {
		return Pair{}, fmt.Errorf("%w: no recordings in common", ErrAlignment)
	}
	return labelRecording(ids[0], ref[ids[0]], sys[ids[0]], step)
}

// labelRecording labels one recording over the span annotated by both sides.
func labelRecording(id string, ref, sys []model.Turn, step float64) (Pair, error) {
	refDur, err := model.Duration(ref)
	if err != nil {
		return Pair{}, fmt.Errorf("reference %s: %w", id, err)
	}
	sysDur, err := model.Duration(sys)
	if err != nil {
		return Pair{}, fmt.Errorf("system %s: %w", id, err)
	}
	dur := min(refDur, sysDur)

	refLabels, err := Label(ref, dur, step)
	if err != nil {
		return Pair{}, fmt.Errorf("reference %s: %w", id, err)
	}
	sysLabels, err := Label(sys, dur, step)
	if err != nil {
		return Pair{}, fmt.Errorf("system %s: %w", id, err)
	}
	return Pair{RecordingID: id, Ref: refLabels, Sys: sysLabels}, nil
}

// appendShifted appends labels renumbered in ascending order to
// offset+1..offset+m, where m is the number of distinct labels, and returns
// offset+m.
func appendShifted(dst, labels []int, offset int) ([]int, int) {
	distinct := slices.Clone(labels)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	dense := make(map[int]int, len(distinct))
	for i, l := range distinct {
		dense[l] = offset + i + 1
	}
	for _, l := range labels {
		dst = append(dst, dense[l])
	}
	return dst, offset + len(distinct)
}
