// Package api exposes diarization scoring over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/dscore/internal/adapters/der"
	"github.com/okian/dscore/internal/adapters/rttm"
	"github.com/okian/dscore/internal/domain/contingency"
	"github.com/okian/dscore/internal/domain/frames"
	"github.com/okian/dscore/internal/domain/model"
	"github.com/okian/dscore/internal/domain/scoring"
	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/logger"
)

// maxBodyBytes bounds a request body holding two RTTM documents.
const maxBodyBytes = 32 << 20

// Scorer is the scoring surface used by the handlers.
type Scorer interface {
	ScoreRecordings(ctx context.Context, ref, sys model.Recordings) (scoring.Scores, error)
	Confusion(ctx context.Context, ref, sys model.Recordings, norm bool) (types.Confusion, error)
	DER(ctx context.Context, refPath, sysPath string) (float64, error)
}

// Params are the per-request scoring settings. Zero values keep the
// server's configured defaults.
type Params struct {
	Step float64
	Nats *bool
}

// Dependencies supplies a Scorer configured for one request.
type Dependencies interface {
	Scorer(p Params) Scorer
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	healthHandler    *HealthHandler
	scoreHandler     *ScoreHandler
	confusionHandler *ConfusionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		scoreHandler:     NewScoreHandler(deps, log.Named("score")),
		confusionHandler: NewConfusionHandler(deps, log.Named("confusion")),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/score", RequestID(MetricsMiddleware(s.scoreHandler.HandleScore, "score")))
	mux.HandleFunc("/confusion", RequestID(MetricsMiddleware(s.confusionHandler.HandleConfusion, "confusion")))
}

// pairRequest carries a reference and a system RTTM document.
type pairRequest struct {
	Reference string  `json:"reference"`
	System    string  `json:"system"`
	Step      float64 `json:"step"`
	Nats      *bool   `json:"nats"`
}

func (p pairRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Reference) == "":
		return errors.New("missing reference")
	case strings.TrimSpace(p.System) == "":
		return errors.New("missing system")
	case p.Step < 0:
		return fmt.Errorf("step must be positive, got %v", p.Step)
	}
	return nil
}

func (p pairRequest) params() Params {
	return Params{Step: p.Step, Nats: p.Nats}
}

func (p pairRequest) recordings() (ref, sys model.Recordings, err error) {
	ref, err = rttm.Read(strings.NewReader(p.Reference))
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}
	sys, err = rttm.Read(strings.NewReader(p.System))
	if err != nil {
		return nil, nil, fmt.Errorf("system: %w", err)
	}
	return ref, sys, nil
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: r.Header.Get(RequestIDHeader)})
}

// writeScoringError maps domain errors to HTTP statuses.
func writeScoringError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrMalformedInput),
		errors.Is(err, frames.ErrInvalidStep):
		writeError(w, r, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, frames.ErrAlignment),
		errors.Is(err, frames.ErrTooManySpeakers),
		errors.Is(err, contingency.ErrEmpty):
		writeError(w, r, http.StatusUnprocessableEntity, "unprocessable", err)
	case errors.Is(err, der.ErrScorerFailure):
		writeError(w, r, http.StatusBadGateway, "scorer_failure", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "cancelled", err)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal", err)
	}
}
