// Package common holds glue shared by every screen handler: list response
// shaping, upstream error relay, and the export format dispatch.
package common

import (
	"encoding/json"
	"net/http"

	"pitstop/internal/audit"
	"pitstop/internal/gateway"
	"pitstop/internal/models"
	"pitstop/internal/pipeline"
	"pitstop/internal/report"
	"pitstop/internal/response"
	"pitstop/internal/server"
)

// RespondPage writes a derived page with the standard meta block.
func RespondPage[T any](w http.ResponseWriter, res pipeline.Result[T]) {
	response.JSONMeta(w, res.Items, models.Meta{
		Total:      res.TotalItems,
		Page:       res.CurrentPage,
		Limit:      pipeline.PageSize,
		TotalPages: res.TotalPages,
	})
}

// RelayError translates a gateway error into this service's error shape,
// preserving the upstream message and a sensible status.
func RelayError(w http.ResponseWriter, err error) {
	response.Err(w, err.Error(), gateway.StatusOf(err))
}

// RecordSearch stores a non-empty search in the local history, best-effort.
func RecordSearch(app *server.App, r *http.Request, screen string, st pipeline.State) {
	if app.Store == nil || st.Search == "" {
		return
	}
	filters, _ := json.Marshal(st.Filters)
	app.Store.RecordSearch(server.Username(r.Context()), screen, st.Search, string(filters))
}

// Export dispatches a finalized row set to the requested format (pdf, csv
// or xlsx; default csv), logging the export in the audit trail. A PDF
// build failure surfaces as a single generic 500.
func Export(w http.ResponseWriter, r *http.Request, app *server.App, screen string,
	opts report.Options, sum report.Summary, cols []report.Column, rows [][]string) {

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}

	switch format {
	case "pdf":
		if err := report.WritePDF(w, screen, opts, sum, cols, rows); err != nil {
			response.Err(w, err.Error(), http.StatusInternalServerError)
			return
		}
	case "xlsx":
		report.WriteExcel(w, screen, headers, rows)
	default:
		format = "csv"
		report.WriteCSV(w, screen, headers, rows)
	}

	if app.Store != nil {
		audit.LogExport(app.Store.DB, app.Hub, server.Username(r.Context()), screen, format, len(rows))
	}
}

// Notify broadcasts a screen refresh when a hub is attached.
func Notify(app *server.App, screen, action string, id any) {
	if app.Hub != nil {
		app.Hub.Refresh(screen, action, id)
	}
}

// AuditLog records a mutation when a local store is attached.
func AuditLog(app *server.App, r *http.Request, action, screen, recordID, summary string) {
	if app.Store != nil {
		audit.Log(app.Store.DB, app.Hub, server.Username(r.Context()), action, screen, recordID, summary)
	}
}

// ExportFilters flattens a pipeline state into the applied-filter map shown
// on report headers, folding the search term in as a pseudo-filter.
func ExportFilters(st pipeline.State) map[string]string {
	filters := make(map[string]string, len(st.Filters)+1)
	for k, v := range st.Filters {
		filters[k] = v
	}
	if st.Search != "" {
		filters["search"] = st.Search
	}
	return filters
}

// OrDash substitutes the placeholder for missing display values.
func OrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
