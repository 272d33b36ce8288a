package api

import (
	"net/http"

	service "github.com/okian/dugout/internal/app"
	"github.com/okian/dugout/internal/domain/types"
	"github.com/okian/dugout/internal/domain/validation"
	"github.com/okian/dugout/pkg/logger"
	"github.com/okian/dugout/pkg/metrics"
)

// Headers understood by POST /recommendations.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps   Recommender
	logger logger.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps Recommender, log logger.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps, logger: log}
}

// HandlePost handles POST /recommendations requests.
func (h *RecommendationsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, op, http.MethodPost)
		return
	}

	var req validation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sit, err := validation.Validate(req)
	if err != nil {
		fields := validation.Fields(err)
		for _, f := range fields.Fields() {
			metrics.RecordValidationRejection(f)
		}
		writeValidationError(w, fields)
		return
	}

	rec, err := h.deps.Recommend(r.Context(), sit, service.SaveOptions{
		Save:           req.SaveToHistory,
		IdempotencyKey: r.Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}

	if rec.Replayed {
		w.Header().Set(HeaderReplayed, "true")
	}
	writeJSON(w, http.StatusOK, types.RecommendationResponse{
		StrategyPlan: rec.Plan,
		HistoryID:    rec.HistoryID,
	})
}
