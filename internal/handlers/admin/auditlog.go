package admin

import (
	"net/http"
	"strconv"

	"pitstop/internal/audit"
	"pitstop/internal/response"
)

// AuditLog returns the recent dashboard audit trail, newest first.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	if h.App.Store == nil {
		response.JSON(w, []audit.Entry{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := audit.List(h.App.Store.DB, limit)
	if err != nil {
		response.Err(w, "Failed to load audit log", 500)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	response.JSON(w, entries)
}
