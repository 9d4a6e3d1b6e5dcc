package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/dscore/internal/domain/model"
	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/logger"
	"github.com/okian/dscore/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Job is what workers read off the queue.
type Job = model.Job

// Scorer scores one reference/system pair.
type Scorer interface {
	ScoreJob(ctx context.Context, j Job) (types.Row, error)
}

// Writer stores scored rows.
type Writer interface {
	Put(ctx context.Context, row types.Row) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker scores jobs until the queue is drained.
//
// A job that fails to score is logged and skipped. Failing to store a row
// stops the worker.
type InMemoryWorker struct {
	queue  Queue
	scorer Scorer
	writer Writer
	name   string
	logger logger.Logger

	scored atomic.Int64
	failed atomic.Int64
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  q,
		scorer: scorer,
		writer: writer,
		name:   "worker",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until the queue channel closes or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j, ok := <-jobs:
			if !ok {
				return ctx.Err()
			}
			if err := w.process(ctx, j); err != nil {
				return err
			}
		}
	}
}

// Scored returns the number of jobs stored by this worker.
func (w *InMemoryWorker) Scored() int { return int(w.scored.Load()) }

// Failed returns the number of jobs this worker skipped.
func (w *InMemoryWorker) Failed() int { return int(w.failed.Load()) }

func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	row, err := w.scorer.ScoreJob(ctx, j)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.failed.Add(1)
		metrics.RecordWorkerError()
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordBatchRecordingSkipped()
			metrics.RecordErrorByComponent("worker", "missing_rttm")
		} else {
			metrics.RecordBatchRecordingFailed()
			metrics.RecordErrorByComponent("worker", "scoring_error")
		}
		w.logger.Warn(ctx, "skipping recording",
			logger.String("file_id", j.FileID),
			logger.Error(err),
		)
		return nil
	}

	if err := w.writer.Put(ctx, row); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store %s: %w", j.FileID, err)
	}
	w.scored.Add(1)
	w.logger.Debug(ctx, "recording scored",
		logger.String("file_id", j.FileID),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one means
// one worker per CPU.
func NewPool(workerCount int, q Queue, scorer Scorer, writer Writer, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, scorer, writer,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and waits until all of them return. The first
// worker error cancels the others.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}
	err := g.Wait()
	p.logger.Debug(ctx, "worker pool finished",
		logger.Int("scored", p.Scored()),
		logger.Int("failed", p.Failed()),
	)
	return err
}

// Scored returns the number of jobs stored across all workers.
func (p *Pool) Scored() int {
	n := 0
	for _, w := range p.workers {
		n += w.Scored()
	}
	return n
}

// Failed returns the number of jobs skipped across all workers.
func (p *Pool) Failed() int {
	n := 0
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}
