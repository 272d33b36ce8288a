// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/dugout/internal/adapters/repository"
	service "github.com/okian/dugout/internal/app"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/types"
	"github.com/okian/dugout/internal/domain/validation"
	"github.com/okian/dugout/pkg/logger"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Recommender produces and optionally records plans.
type Recommender interface {
	Recommend(ctx context.Context, s model.GameSituation, opts service.SaveOptions) (service.Recommendation, error)
}

// History exposes the play history.
type History interface {
	ListPlays(ctx context.Context, opts repository.ListOptions) (types.PlayList, error)
	GetPlay(ctx context.Context, id string) (model.Play, error)
	CreatePlay(ctx context.Context, p model.Play) (model.Play, error)
	UpdatePlay(ctx context.Context, id string, p model.Play) (model.Play, error)
	PatchPlay(ctx context.Context, id string, patch types.PlayInput) (model.Play, error)
	DeletePlay(ctx context.Context, id string) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Recommender
	History
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	playsHandler           *PlaysHandler
}

// ServerOption configures the API server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// WithListLimits sets the default and maximum page size of GET /plays.
// Both are capped at repository.MaxListLimit.
func WithListLimits(defaultLimit, maxLimit int) ServerOption {
	return func(c *serverConfig) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			c.maxLimit = min(maxLimit, repository.MaxListLimit)
			c.defaultLimit = min(defaultLimit, c.maxLimit)
		}
	}
}

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	cfg := serverConfig{
		defaultLimit: repository.DefaultListLimit,
		maxLimit:     repository.MaxListLimit,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(deps),
		recommendationsHandler: NewRecommendationsHandler(deps, cfg.logger),
		playsHandler:           NewPlaysHandler(deps, cfg.defaultLimit, cfg.maxLimit, cfg.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recommendations", MetricsMiddleware(s.recommendationsHandler.HandlePost, "recommendations"))
	mux.HandleFunc("/plays", MetricsMiddleware(s.playsHandler.HandleCollection, "plays"))
	mux.HandleFunc("/plays/{id}", MetricsMiddleware(s.playsHandler.HandleItem, "play"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

func writeValidationError(w http.ResponseWriter, fields validation.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
		Code:    "validation_failed",
		Message: validation.ErrInvalid.Error(),
		Fields:  fields,
	})
}

func writeMethodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}

// writeServiceError maps a failure from the service layer to a response.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	if fields := validation.Fields(err); fields != nil {
		writeValidationError(w, fields)
		return
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, repository.ErrInvalidOffset):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", NewKind(op, ErrInternal))
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
