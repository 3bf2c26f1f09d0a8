package admin

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pitstop/internal/models"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

// ListSearches returns the caller's saved searches, optionally scoped to
// one screen via ?screen=.
func (h *Handler) ListSearches(w http.ResponseWriter, r *http.Request) {
	if h.App.Store == nil {
		response.JSON(w, []models.SavedSearch{})
		return
	}
	out, err := h.App.Store.ListSearches(server.Username(r.Context()), r.URL.Query().Get("screen"))
	if err != nil {
		response.Err(w, "Failed to load saved searches", 500)
		return
	}
	if out == nil {
		out = []models.SavedSearch{}
	}
	response.JSON(w, out)
}

func (h *Handler) CreateSearch(w http.ResponseWriter, r *http.Request) {
	if h.App.Store == nil {
		response.Err(w, "Saved searches are not enabled", 503)
		return
	}

	var draft models.SavedSearch
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "name", draft.Name)
	validation.RequireField(&ve, "screen", draft.Screen)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	draft.ID = uuid.New().String()
	draft.CreatedBy = server.Username(r.Context())
	draft.CreatedAt = time.Now()

	if err := h.App.Store.SaveSearch(draft); err != nil {
		response.Err(w, "Failed to save search", 500)
		return
	}
	response.JSON(w, draft)
}

func (h *Handler) DeleteSearch(w http.ResponseWriter, r *http.Request, id string) {
	if h.App.Store == nil {
		response.Err(w, "Saved searches are not enabled", 503)
		return
	}
	err := h.App.Store.DeleteSearch(id, server.Username(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		response.Err(w, "Saved search not found", 404)
		return
	}
	if err != nil {
		response.Err(w, "Failed to delete saved search", 500)
		return
	}
	response.JSON(w, map[string]bool{"deleted": true})
}

// SearchHistory returns the caller's recent searches, newest first.
func (h *Handler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	if h.App.Store == nil {
		response.JSON(w, []struct{}{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.App.Store.ListHistory(server.Username(r.Context()), r.URL.Query().Get("screen"), limit)
	if err != nil {
		response.Err(w, "Failed to load search history", 500)
		return
	}
	response.JSON(w, out)
}
