// Package der computes diarization error rate by delegating to an external
// scoring tool.
package der

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
)

// DefaultCollar is the forgiveness collar in seconds around reference boundaries.
const DefaultCollar = 0.250

// Options controls how DER is scored.
type Options struct {
	// Collar is excluded from scoring on either side of each reference boundary.
	Collar float64
	// IgnoreOverlaps excludes regions where more than one reference speaker talks.
	IgnoreOverlaps bool
}

// DefaultOptions returns the collar and overlap settings used by NIST evaluations.
func DefaultOptions() Options {
	return Options{Collar: DefaultCollar, IgnoreOverlaps: true}
}

// Scorer computes overall DER, in percent, for a reference/system RTTM pair.
type Scorer interface {
	Score(ctx context.Context, refPath, sysPath string, opts Options) (float64, error)
}

var overallRe = regexp.MustCompile(`OVERALL SPEAKER DIARIZATION ERROR = ([\d.]+)`)

// MDEval runs NIST md-eval (v22) as a subprocess.
type MDEval struct {
	bin string
}

// NewMDEval returns a scorer that invokes the md-eval script at bin.
func NewMDEval(bin string) *MDEval {
	return &MDEval{bin: bin}
}

// Args returns the command line arguments passed to md-eval.
func Args(refPath, sysPath string, opts Options) []string {
	args := []string{
		"-r", refPath,
		"-s", sysPath,
		"-c", strconv.FormatFloat(opts.Collar, 'f', -1, 64),
	}
	if opts.IgnoreOverlaps {
		args = append(args, "-1")
	}
	return args
}

// Score runs md-eval and parses the overall diarization error from its report.
func (m *MDEval) Score(ctx context.Context, refPath, sysPath string, opts Options) (float64, error) {
	cmd := exec.CommandContext(ctx, m.bin, Args(refPath, sysPath, opts)...)
	cmd.Stderr = io.Discard
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrScorerFailure, m.bin, err)
	}
	return Parse(out)
}

// Parse extracts the overall DER from md-eval output.
func Parse(out []byte) (float64, error) {
	m := overallRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("%w: overall error not found in output", ErrScorerFailure)
	}
	v, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrScorerFailure, m[1], err)
	}
	return v, nil
}

// Stub is a Scorer that returns a fixed value without running anything.
type Stub struct {
	Value float64
	Err   error
}

// Score implements Scorer.
func (s Stub) Score(ctx context.Context, _, _ string, _ Options) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Value, nil
}
