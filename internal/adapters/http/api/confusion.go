package api

import (
	"fmt"
	"net/http"

	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/logger"
)

type confusionRequest struct {
	pairRequest
	Norm bool `json:"norm"`
}

type confusionResponse struct {
	RequestID string `json:"request_id"`
	types.Confusion
}

// ConfusionHandler handles POST /confusion.
type ConfusionHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewConfusionHandler creates a new confusion handler.
func NewConfusionHandler(deps Dependencies, log logger.Logger) *ConfusionHandler {
	return &ConfusionHandler{deps: deps, logger: log}
}

// HandleConfusion returns the confusion table of the single recording in
// the request.
func (h *ConfusionHandler) HandleConfusion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	var req confusionRequest
	if err := decode(w, r, &req); err != nil {
		writeScoringError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		writeScoringError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	ref, sys, err := req.recordings()
	if err != nil {
		writeScoringError(w, r, err)
		return
	}
	c, err := h.deps.Scorer(req.params()).Confusion(r.Context(), ref, sys, req.Norm)
	if err != nil {
		h.logger.Debug(r.Context(), "confusion failed", logger.Error(err))
		writeScoringError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confusionResponse{RequestID: r.Header.Get(RequestIDHeader), Confusion: c})
}
