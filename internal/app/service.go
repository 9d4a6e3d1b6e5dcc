// Package service scores reference/system diarizations: a single pair, a
// confusion table for one recording, or a batch of pairs on a worker pool.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/okian/dscore/internal/adapters/der"
	"github.com/okian/dscore/internal/adapters/rttm"
	"github.com/okian/dscore/internal/domain/contingency"
	"github.com/okian/dscore/internal/domain/frames"
	"github.com/okian/dscore/internal/domain/model"
	"github.com/okian/dscore/internal/domain/scoring"
	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/logger"
	"github.com/okian/dscore/pkg/metrics"
	"gonum.org/v1/gonum/mat"
)

// Service holds scoring settings shared by every operation.
type Service struct {
	der     der.Scorer
	derOpts der.Options
	step    float64
	unit    scoring.Unit

	workerCount int
	queueSize   int
	dedupeSize  int

	logger logger.Logger
}

// New constructs a Service. Without WithDERScorer, DER is computed by
// md-eval-22.pl found on PATH.
func New(opts ...Option) *Service {
	s := &Service{
		der:         der.NewMDEval("md-eval-22.pl"),
		derOpts:     der.DefaultOptions(),
		step:        frames.DefaultStep,
		unit:        scoring.Bits,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  100_000,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step returns the frame step in seconds.
func (s *Service) Step() float64 { return s.step }

// ScoreRecordings computes the frame-level metrics over every recording
// shared by ref and sys.
func (s *Service) ScoreRecordings(ctx context.Context, ref, sys model.Recordings) (scoring.Scores, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Scores{}, err
	}
	start := time.Now()

	aligned, err := frames.Align(ref, sys, s.step)
	if err != nil {
		return scoring.Scores{}, err
	}
	table, err := contingency.Build(aligned.Ref, aligned.Sys)
	if err != nil {
		return scoring.Scores{}, err
	}
	scores := scoring.Compute(table.Matrix, scoring.WithUnit(s.unit))

	metrics.RecordFramesLabeled(len(aligned.Ref) + len(aligned.Sys))
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordRecordingScored()
	return scores, nil
}

// ScorePair computes DER and the frame-level metrics for one reference and
// one system RTTM file. The row is keyed by the reference file's basename.
func (s *Service) ScorePair(ctx context.Context, refPath, sysPath string) (types.Row, error) {
	return s.scorePaths(ctx, fileID(refPath), refPath, sysPath)
}

// ScoreJob scores one batch job. A missing RTTM is reported as an error
// wrapping fs.ErrNotExist.
func (s *Service) ScoreJob(ctx context.Context, j model.Job) (types.Row, error) {
	if _, err := os.Stat(j.RefPath); err != nil {
		return types.Row{}, fmt.Errorf("missing reference RTTM: %w", err)
	}
	if _, err := os.Stat(j.SysPath); err != nil {
		return types.Row{}, fmt.Errorf("missing system RTTM: %w", err)
	}
	return s.scorePaths(ctx, j.FileID, j.RefPath, j.SysPath)
}

func (s *Service) scorePaths(ctx context.Context, id, refPath, sysPath string) (types.Row, error) {
	ref, err := rttm.ReadFile(refPath)
	if err != nil {
		return types.Row{}, err
	}
	sys, err := rttm.ReadFile(sysPath)
	if err != nil {
		return types.Row{}, err
	}
	derValue, err := s.DER(ctx, refPath, sysPath)
	if err != nil {
		return types.Row{}, err
	}
	scores, err := s.ScoreRecordings(ctx, ref, sys)
	if err != nil {
		return types.Row{}, fmt.Errorf("%s: %w", id, err)
	}
	return types.NewRow(id, derValue, scores), nil
}

// DER runs the configured DER scorer on a pair of RTTM files.
func (s *Service) DER(ctx context.Context, refPath, sysPath string) (float64, error) {
	start := time.Now()
	v, err := s.der.Score(ctx, refPath, sysPath, s.derOpts)
	metrics.RecordDERLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordDERFailure()
		metrics.RecordErrorByComponent("der", "scorer_failure")
		return 0, err
	}
	return v, nil
}

// Confusion returns the confusion table between reference and system frame
// classes of the one recording in ref and sys. Overlapped frames are
// composite classes such as "A_B". With norm, each row sums to one.
func (s *Service) Confusion(ctx context.Context, ref, sys model.Recordings, norm bool) (types.Confusion, error) {
	if err := ctx.Err(); err != nil {
		return types.Confusion{}, err
	}
	pair, err := frames.AlignSingle(ref, sys, s.step)
	if err != nil {
		return types.Confusion{}, err
	}
	table, err := contingency.Build(pair.Ref.Strings(), pair.Sys.Strings())
	if err != nil {
		return types.Confusion{}, err
	}

	out := types.Confusion{
		RecordingID: pair.RecordingID,
		RefClasses:  table.RefClasses,
		SysClasses:  table.SysClasses,
		Normalized:  norm,
	}
	if norm {
		out.Counts = rows(table.RowNormalized())
	} else {
		out.Counts = table.Counts()
	}
	return out, nil
}

// ConfusionFiles reads both RTTM files and returns their Confusion.
func (s *Service) ConfusionFiles(ctx context.Context, refPath, sysPath string, norm bool) (types.Confusion, error) {
	ref, err := rttm.ReadFile(refPath)
	if err != nil {
		return types.Confusion{}, err
	}
	sys, err := rttm.ReadFile(sysPath)
	if err != nil {
		return types.Confusion{}, err
	}
	return s.Confusion(ctx, ref, sys, norm)
}

func rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

func fileID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".rttm")
}

// With returns a copy of s with opts applied on top of its settings.
func (s *Service) With(opts ...Option) *Service {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}
