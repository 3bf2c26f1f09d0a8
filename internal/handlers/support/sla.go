package support

import (
	"fmt"
	"net/http"
	"time"

	"pitstop/internal/audit"
	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/pipeline"
	"pitstop/internal/report"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

var violationStatuses = []string{"open", "acknowledged", "waived", "resolved"}

// ViolationRow is an SLA violation joined with its display references.
type ViolationRow struct {
	models.SLAViolation
	OrderNumber string `json:"order_number"`
	DealerName  string `json:"dealer_name"`
}

var violationConfig = pipeline.Config[ViolationRow]{
	SearchFields: []func(ViolationRow) string{
		func(v ViolationRow) string { return v.OrderNumber },
		func(v ViolationRow) string { return v.DealerName },
		func(v ViolationRow) string { return v.Stage },
	},
	SortFields: map[string]func(ViolationRow) interface{}{
		"order_number": func(v ViolationRow) interface{} { return v.OrderNumber },
		"dealer_name":  func(v ViolationRow) interface{} { return v.DealerName },
		"stage":        func(v ViolationRow) interface{} { return v.Stage },
		"minutes":      func(v ViolationRow) interface{} { return v.Minutes },
		"status":       func(v ViolationRow) interface{} { return v.Status },
		"occurred_at":  func(v ViolationRow) interface{} { return v.OccurredAt },
	},
	FilterFields: map[string]func(ViolationRow, string) bool{
		"status": func(v ViolationRow, val string) bool { return v.Status == val },
		"stage":  func(v ViolationRow, val string) bool { return v.Stage == val },
		"range": func(v ViolationRow, val string) bool {
			return pipeline.InRange(v.OccurredAt, val, time.Now())
		},
	},
}

func (h *Handler) fetchViolations(r *http.Request) ([]ViolationRow, error) {
	var violations []models.SLAViolation
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "support/api/sla-violations", &violations); err != nil {
		return nil, err
	}

	ids := make([]string, len(violations))
	for i, v := range violations {
		ids[i] = v.DealerID
	}
	dealers := h.dealers.ResolveAll(r.Context(), ids)

	rows := make([]ViolationRow, len(violations))
	for i, v := range violations {
		row := ViolationRow{
			SLAViolation: v,
			OrderNumber:  v.Order.Display(),
			DealerName:   v.DealerID,
		}
		if d, ok := dealers[v.DealerID]; ok {
			row.DealerName = d.LegalName
		}
		rows[i] = row
	}
	return rows, nil
}

// violationSummary aggregates the filtered set for the screen header: total
// count, worst overrun and per-stage counts.
func violationSummary(rows []ViolationRow) map[string]interface{} {
	worst := 0
	byStage := map[string]int{}
	for _, v := range rows {
		if v.Minutes > worst {
			worst = v.Minutes
		}
		byStage[v.Stage]++
	}
	return map[string]interface{}{
		"total":         len(rows),
		"worst_minutes": worst,
		"by_stage":      byStage,
	}
}

func (h *Handler) ListViolations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchViolations(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "stage", "range")
	common.RecordSearch(h.App, r, "sla", st)

	filtered := pipeline.Filter(rows, st, violationConfig)
	res := pipeline.Apply(rows, st, violationConfig)
	response.JSONMeta(w, map[string]interface{}{
		"violations": res.Items,
		"summary":    violationSummary(filtered),
	}, models.Meta{
		Total:      res.TotalItems,
		Page:       res.CurrentPage,
		Limit:      pipeline.PageSize,
		TotalPages: res.TotalPages,
	})
}

// UpdateViolation changes a violation's review status (acknowledge, waive,
// resolve).
func (h *Handler) UpdateViolation(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "status", body.Status)
	validation.ValidateEnum(&ve, "status", body.Status, violationStatuses)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.SLAViolation
	err := h.App.Gateway.Patch(r.Context(), server.Token(r.Context()),
		"support/api/sla-violations/"+id+"/status", body, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "sla", id,
		fmt.Sprintf("SLA violation marked %s", body.Status))
	common.Notify(h.App, "sla", "update", id)
	response.JSON(w, updated)
}

var violationExportCols = []report.Column{
	{Header: "Order #", Width: 32},
	{Header: "Dealer", Width: 48},
	{Header: "Stage", Width: 28},
	{Header: "Overrun (min)", Width: 28},
	{Header: "Status", Width: 30},
	{Header: "Occurred", Width: 24},
}

func (h *Handler) ExportViolations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchViolations(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "stage", "range")
	filtered := pipeline.Filter(rows, st, violationConfig)

	stages := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, v := range filtered {
		stages[i] = v.Stage
		data[i] = []string{
			v.OrderNumber,
			v.DealerName,
			v.Stage,
			fmt.Sprintf("%d", v.Minutes),
			v.Status,
			v.OccurredAt.Format("2006-01-02 15:04"),
		}
	}

	opts := report.Options{
		Title:       "SLA Violations Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "sla", opts, report.SummarizeBy("stage", stages), violationExportCols, data)
}
