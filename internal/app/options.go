package service

import (
	"github.com/okian/dscore/internal/adapters/der"
	"github.com/okian/dscore/internal/config"
	"github.com/okian/dscore/internal/domain/scoring"
	"github.com/okian/dscore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDERScorer sets the scorer used for diarization error rate.
func WithDERScorer(s der.Scorer) Option {
	return func(svc *Service) {
		if s != nil {
			svc.der = s
		}
	}
}

// WithStep sets the frame step in seconds.
func WithStep(step float64) Option {
	return func(s *Service) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithCollar sets the DER collar in seconds.
func WithCollar(collar float64) Option {
	return func(s *Service) {
		if collar >= 0 {
			s.derOpts.Collar = collar
		}
	}
}

// WithIgnoreOverlaps controls whether DER ignores overlapped reference speech.
func WithIgnoreOverlaps(ignore bool) Option {
	return func(s *Service) {
		s.derOpts.IgnoreOverlaps = ignore
	}
}

// WithNats reports information metrics in nats instead of bits.
func WithNats(nats bool) Option {
	return func(s *Service) {
		s.unit = scoring.Bits
		if nats {
			s.unit = scoring.Nats
		}
	}
}

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the batch job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the initial capacity of the batch file id deduper.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// FromConfig translates a loaded Config into service options. The DER
// scorer is md-eval at cfg.MDEvalPath.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithDERScorer(der.NewMDEval(cfg.MDEvalPath)),
		WithStep(cfg.Step),
		WithCollar(cfg.Collar),
		WithIgnoreOverlaps(cfg.IgnoreOverlaps),
		WithNats(cfg.Nats),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
	}
}
