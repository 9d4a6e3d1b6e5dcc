package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/okian/dscore/internal/adapters/mq/queue"
	"github.com/okian/dscore/internal/adapters/mq/worker"
	"github.com/okian/dscore/internal/adapters/repository"
	"github.com/okian/dscore/internal/domain/dedupe"
	"github.com/okian/dscore/internal/domain/model"
	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/logger"
	"github.com/okian/dscore/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// BatchRequest names the RTTM directories of a batch and, optionally, a
// script file listing the file ids to score.
type BatchRequest struct {
	RefDir string
	SysDir string
	// ScriptFile holds one file id per line. When empty, ids are the
	// basenames of *.rttm files present in both directories.
	ScriptFile string
}

// BatchResult is the outcome of a batch run.
type BatchResult struct {
	// Rows are ordered by file id.
	Rows       []types.Row
	Failed     int
	Duplicates int
}

// Batch scores every file id of req on the worker pool. Recordings that
// cannot be scored are logged and left out of the result.
func (s *Service) Batch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return BatchResult{}, err
	}
	ids, err := s.batchIDs(req)
	if err != nil {
		return BatchResult{}, err
	}
	if len(ids) == 0 {
		return BatchResult{}, ErrNoFileIDs
	}

	log := s.logger.Named("batch")
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	store := repository.NewMemoryStore(repository.WithCapacityHint(len(ids)))
	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(min(s.dedupeSize, len(ids))))
	pool := worker.NewPool(s.workerCount, q, s, store, worker.WithPoolLogger(log))

	log.Info(ctx, "batch started",
		logger.Int("file_ids", len(ids)),
		logger.Int("workers", pool.Size()),
	)

	var duplicates int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		for _, id := range ids {
			if seen.SeenAndRecord(gctx, id) {
				duplicates++
				metrics.RecordBatchDuplicate()
				log.Debug(gctx, "duplicate file id", logger.String("file_id", id))
				continue
			}
			j := model.Job{
				FileID:  id,
				RefPath: filepath.Join(req.RefDir, id+".rttm"),
				SysPath: filepath.Join(req.SysDir, id+".rttm"),
			}
			if err := enqueue(gctx, q, j, log); err != nil {
				seen.Unrecord(gctx, id)
				return fmt.Errorf("enqueue %s: %w", id, err)
			}
		}
		return nil
	})
	g.Go(func() error { return pool.Run(gctx) })
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	rows, err := store.List(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	log.Info(ctx, "batch finished",
		logger.Int("distinct_ids", int(seen.Size())),
		logger.Int("scored", store.Count(ctx)),
		logger.Int("failed", pool.Failed()),
		logger.Int("duplicates", duplicates),
	)
	return BatchResult{Rows: rows, Failed: pool.Failed(), Duplicates: duplicates}, nil
}

// enqueue hands j to q, waiting for room only when the workers fall behind.
func enqueue(ctx context.Context, q queue.Queue, j model.Job, log logger.Logger) error {
	err := q.TryEnqueue(ctx, j)
	if !errors.Is(err, queue.ErrFull) {
		return err
	}
	log.Debug(ctx, "queue full, waiting for workers",
		logger.String("file_id", j.FileID),
		logger.Int("queue_len", q.Len(ctx)),
	)
	return q.Enqueue(ctx, j)
}

func (s *Service) batchIDs(req BatchRequest) ([]string, error) {
	if req.ScriptFile != "" {
		return ReadScript(req.ScriptFile)
	}
	return FileIDs(req.RefDir, req.SysDir)
}

// FileIDs returns the sorted basenames, without extension, of the *.rttm
// files present in both refDir and sysDir.
func FileIDs(refDir, sysDir string) ([]string, error) {
	refIDs, err := rttmIDs(refDir)
	if err != nil {
		return nil, err
	}
	sysIDs, err := rttmIDs(sysDir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, id := range refIDs {
		if _, ok := slices.BinarySearch(sysIDs, id); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func rttmIDs(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("rttm directory: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.rttm"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(paths))
	for i, p := range paths {
		ids[i] = fileID(p)
	}
	slices.Sort(ids)
	return ids, nil
}

// ReadScript reads one file id per line from path. Surrounding whitespace
// is trimmed and blank lines are ignored.
func ReadScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ids, nil
}
