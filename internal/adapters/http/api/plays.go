package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/dugout/internal/adapters/repository"
	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/internal/domain/types"
	"github.com/okian/dugout/internal/domain/validation"
	"github.com/okian/dugout/pkg/logger"
)

// PlaysHandler serves the play history collection and its items.
type PlaysHandler struct {
	deps         History
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// NewPlaysHandler creates a new plays handler.
func NewPlaysHandler(deps History, defaultLimit, maxLimit int, log logger.Logger) *PlaysHandler {
	return &PlaysHandler{deps: deps, defaultLimit: defaultLimit, maxLimit: maxLimit, logger: log}
}

// HandleCollection handles GET and POST /plays.
func (h *PlaysHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeMethodNotAllowed(w, "api.plays", http.MethodGet, http.MethodPost)
	}
}

// HandleItem handles GET, PUT, PATCH and DELETE /plays/{id}.
func (h *PlaysHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		const op = "api.getPlay"
		p, err := h.deps.GetPlay(r.Context(), id)
		if err != nil {
			writeServiceError(r.Context(), w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		h.replace(w, r, id)
	case http.MethodPatch:
		h.patch(w, r, id)
	case http.MethodDelete:
		const op = "api.deletePlay"
		if err := h.deps.DeletePlay(r.Context(), id); err != nil {
			writeServiceError(r.Context(), w, h.logger, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, "api.play", http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (h *PlaysHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.listPlays"
	opts, fields := h.listOptions(r.URL.Query())
	if fields != nil {
		writeValidationError(w, fields)
		return
	}
	page, err := h.deps.ListPlays(r.Context(), opts)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	if page.Items == nil {
		page.Items = []model.Play{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PlaysHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.createPlay"
	var in types.PlayInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := in.Build()
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	created, err := h.deps.CreatePlay(r.Context(), p)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	w.Header().Set("Location", "/plays/"+url.PathEscape(created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (h *PlaysHandler) replace(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.updatePlay"
	var in types.PlayInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := in.Build()
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	updated, err := h.deps.UpdatePlay(r.Context(), id, p)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PlaysHandler) patch(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.patchPlay"
	var in types.PlayInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	updated, err := h.deps.PatchPlay(r.Context(), id, in)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// listOptions parses the query string of GET /plays. Every malformed
// parameter is reported.
func (h *PlaysHandler) listOptions(q url.Values) (repository.ListOptions, validation.FieldErrors) {
	fields := validation.FieldErrors{}
	opts := repository.ListOptions{Limit: h.defaultLimit, Search: q.Get("search")}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			fields["limit"] = append(fields["limit"], "must be an integer")
		case n < 1 || n > h.maxLimit:
			fields["limit"] = append(fields["limit"], "must be between 1 and "+strconv.Itoa(h.maxLimit))
		default:
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["offset"] = append(fields["offset"], "must be a non-negative integer")
		} else {
			opts.Offset = n
		}
	}
	if v := q.Get("halfInning"); v != "" {
		if half, err := model.ParseHalfInning(v); err == nil {
			opts.HalfInning = half
		} else {
			fields["halfInning"] = append(fields["halfInning"], `must be "top" or "bottom"`)
		}
	}
	if v := q.Get("outs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > validation.MaxOuts {
			fields["outs"] = append(fields["outs"], "must be between 0 and "+strconv.Itoa(validation.MaxOuts))
		} else {
			opts.Outs = &n
		}
	}
	opts.GeneratedFromEngine = boolParam(q, "generated", fields)
	opts.RunnersOnFirst = boolParam(q, "runnersOnFirst", fields)
	opts.RunnersOnSecond = boolParam(q, "runnersOnSecond", fields)
	opts.RunnersOnThird = boolParam(q, "runnersOnThird", fields)

	if len(fields) > 0 {
		return repository.ListOptions{}, fields
	}
	return opts, nil
}

func boolParam(q url.Values, name string, fields validation.FieldErrors) *bool {
	v := q.Get(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		fields[name] = append(fields[name], "must be true or false")
		return nil
	}
	return &b
}
