package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/okian/dscore/internal/domain/scoring"
	"github.com/okian/dscore/pkg/logger"
)

type scoreRequest struct {
	pairRequest
	// DER runs the external scorer on the two documents as well.
	DER bool `json:"der"`
}

type scoreResponse struct {
	RequestID    string   `json:"request_id"`
	RecordingIDs []string `json:"recording_ids"`
	DER          *float64 `json:"der,omitempty"`
	B3Precision  float64  `json:"b3_precision"`
	B3Recall     float64  `json:"b3_recall"`
	B3F1         float64  `json:"b3_f1"`
	TauRefSys    float64  `json:"tau_ref_sys"`
	TauSysRef    float64  `json:"tau_sys_ref"`
	CE           float64  `json:"ce"`
	MI           float64  `json:"mi"`
	NMI          float64  `json:"nmi"`
}

func newScoreResponse(requestID string, ids []string, s scoring.Scores) scoreResponse {
	return scoreResponse{
		RequestID:    requestID,
		RecordingIDs: ids,
		B3Precision:  s.BCubedPrecision,
		B3Recall:     s.BCubedRecall,
		B3F1:         s.BCubedF1,
		TauRefSys:    s.TauRefSys,
		TauSysRef:    s.TauSysRef,
		CE:           s.CE,
		MI:           s.MI,
		NMI:          s.NMI,
	}
}

// ScoreHandler handles POST /score.
type ScoreHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies, log logger.Logger) *ScoreHandler {
	return &ScoreHandler{deps: deps, logger: log}
}

// HandleScore scores the reference and system documents of the request.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	ctx := r.Context()
	requestID := r.Header.Get(RequestIDHeader)

	var req scoreRequest
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

	scorer := h.deps.Scorer(req.params())
	scores, err := scorer.ScoreRecordings(ctx, ref, sys)
	if err != nil {
		writeScoringError(w, r, err)
		return
	}
	resp := newScoreResponse(requestID, ref.Common(sys), scores)

	if req.DER {
		v, err := h.der(ctx, scorer, req.Reference, req.System)
		if err != nil {
			h.logger.Warn(ctx, "der scoring failed",
				logger.String("request_id", requestID),
				logger.Error(err),
			)
			writeScoringError(w, r, err)
			return
		}
		resp.DER = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// der writes both documents to temporary RTTM files and runs the external
// scorer on them.
func (h *ScoreHandler) der(ctx context.Context, scorer Scorer, ref, sys string) (float64, error) {
	dir, err := os.MkdirTemp("", "dscore-")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	name := uuid.NewString()
	refPath := filepath.Join(dir, name+"-ref.rttm")
	sysPath := filepath.Join(dir, name+"-sys.rttm")
	if err := os.WriteFile(refPath, []byte(ref), 0o600); err != nil {
		return 0, err
	}
	if err := os.WriteFile(sysPath, []byte(sys), 0o600); err != nil {
		return 0, err
	}
	return scorer.DER(ctx, refPath, sysPath)
}
