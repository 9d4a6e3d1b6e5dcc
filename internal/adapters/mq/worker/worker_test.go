package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/okian/dscore/internal/adapters/mq/worker"
	"github.com/okian/dscore/internal/domain/model"
	"github.com/okian/dscore/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue(jobs ...worker.Job) *mockQueue {
	q := &mockQueue{jobs: make(chan worker.Job, len(jobs))}
	for _, j := range jobs {
		q.jobs <- j
	}
	close(q.jobs)
	return q
}

func (q *mockQueue) Dequeue(context.Context) <-chan worker.Job { return q.jobs }

type mockScorer struct {
	errs map[string]error
}

func (s *mockScorer) ScoreJob(ctx context.Context, j worker.Job) (types.Row, error) {
	if err := s.errs[j.FileID]; err != nil {
		return types.Row{}, err
	}
	return types.Row{FileID: j.FileID, DER: 1}, nil
}

type mockWriter struct {
	mu   sync.Mutex
	rows map[string]types.Row
	err  error
}

func newMockWriter() *mockWriter { return &mockWriter{rows: map[string]types.Row{}} }

func (w *mockWriter) Put(_ context.Context, row types.Row) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows[row.FileID] = row
	return nil
}

func (w *mockWriter) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rows)
}

func jobs(ids ...string) []worker.Job {
	out := make([]worker.Job, len(ids))
	for i, id := range ids {
		out[i] = model.Job{FileID: id}
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a closed queue", t, func() {
		ctx := context.Background()
		writer := newMockWriter()

		convey.Convey("When every job scores", func() {
			w := worker.NewInMemoryWorker(newMockQueue(jobs("a", "b")...), &mockScorer{}, writer, worker.WithName("test"))
			err := w.Run(ctx)

			convey.Convey("Then every row is stored and Run returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(writer.len(), convey.ShouldEqual, 2)
				convey.So(w.Scored(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a job fails to score", func() {
			scorer := &mockScorer{errs: map[string]error{
				"bad":     errors.New("malformed"),
				"missing": fmt.Errorf("open: %w", fs.ErrNotExist),
			}}
			w := worker.NewInMemoryWorker(newMockQueue(jobs("a", "bad", "missing", "b")...), scorer, writer)
			err := w.Run(ctx)

			convey.Convey("Then it is skipped and the rest are scored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(writer.len(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the writer fails", func() {
			writer.err = errors.New("disk full")
			w := worker.NewInMemoryWorker(newMockQueue(jobs("a")...), &mockScorer{}, writer)
			err := w.Run(ctx)

			convey.Convey("Then the worker stops with the error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, writer.err), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			q := &mockQueue{jobs: make(chan worker.Job)}
			cctx, cancel := context.WithCancel(ctx)
			w := worker.NewInMemoryWorker(q, &mockScorer{}, writer)
			done := make(chan error, 1)
			go func() { done <- w.Run(cctx) }()
			cancel()

			convey.Convey("Then Run returns the context error", func() {
				select {
				case err := <-done:
					convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		ctx := context.Background()
		writer := newMockWriter()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, newMockQueue(), &mockScorer{}, writer)
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When many jobs are queued", func() {
			var ids []string
			for i := range 100 {
				ids = append(ids, fmt.Sprintf("rec%03d", i))
			}
			scorer := &mockScorer{errs: map[string]error{"rec007": errors.New("bad rttm")}}
			p := worker.NewPool(4, newMockQueue(jobs(ids...)...), scorer, writer)
			err := p.Run(ctx)

			convey.Convey("Then all but the failing job are stored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(writer.len(), convey.ShouldEqual, 99)
				convey.So(p.Scored(), convey.ShouldEqual, 99)
				convey.So(p.Failed(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When one worker hits a store error", func() {
			writer.err = errors.New("closed")
			p := worker.NewPool(3, newMockQueue(jobs("a", "b", "c", "d")...), &mockScorer{}, writer)

			convey.Convey("Then Run reports it", func() {
				convey.So(p.Run(ctx), convey.ShouldNotBeNil)
			})
		})
	})
}
