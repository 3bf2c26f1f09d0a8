// Package admin implements the administrative screens: serviceability
// pincodes, platform settings, saved searches, the dashboard summary,
// global search, the audit trail, and session auth.
package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pitstop/internal/audit"
	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/pipeline"
	"pitstop/internal/report"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

type Handler struct {
	App *server.App
}

func New(app *server.App) *Handler { return &Handler{App: app} }

var pincodeConfig = pipeline.Config[models.Pincode]{
	SearchFields: []func(models.Pincode) string{
		func(p models.Pincode) string { return p.Code },
		func(p models.Pincode) string { return p.City },
		func(p models.Pincode) string { return p.State },
	},
	SortFields: map[string]func(models.Pincode) interface{}{
		"code":  func(p models.Pincode) interface{} { return p.Code },
		"city":  func(p models.Pincode) interface{} { return p.City },
		"state": func(p models.Pincode) interface{} { return p.State },
	},
	FilterFields: map[string]func(models.Pincode, string) bool{
		"serviceable": func(p models.Pincode, v string) bool { return p.Serviceable == (v == "yes") },
		"cod":         func(p models.Pincode, v string) bool { return p.CODAvailable == (v == "yes") },
		"state":       func(p models.Pincode, v string) bool { return p.State == v },
	},
}

func (h *Handler) fetchPincodes(r *http.Request) ([]models.Pincode, error) {
	var rows []models.Pincode
	err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "settings/api/pincodes", &rows)
	return rows, err
}

func (h *Handler) ListPincodes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchPincodes(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "serviceable", "cod", "state")
	common.RecordSearch(h.App, r, "pincodes", st)
	common.RespondPage(w, pipeline.Apply(rows, st, pincodeConfig))
}

func validatePincode(p models.Pincode) *validation.ValidationErrors {
	var ve validation.ValidationErrors
	validation.RequireField(&ve, "code", p.Code)
	validation.ValidatePincode(&ve, "code", p.Code)
	validation.RequireField(&ve, "city", p.City)
	validation.RequireField(&ve, "state", p.State)
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func (h *Handler) CreatePincode(w http.ResponseWriter, r *http.Request) {
	var draft models.Pincode
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validatePincode(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var created models.Pincode
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"settings/api/pincodes", uuid.New().String(), draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "pincodes", created.ID,
		fmt.Sprintf("Added pincode %s (%s)", created.Code, created.City))
	common.Notify(h.App, "pincodes", "create", created.ID)
	response.JSON(w, created)
}

func (h *Handler) UpdatePincode(w http.ResponseWriter, r *http.Request, id string) {
	var draft models.Pincode
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validatePincode(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Pincode
	err := h.App.Gateway.Put(r.Context(), server.Token(r.Context()), "settings/api/pincodes/"+id, draft, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "pincodes", id,
		fmt.Sprintf("Updated pincode %s", updated.Code))
	common.Notify(h.App, "pincodes", "update", id)
	response.JSON(w, updated)
}

func (h *Handler) DeletePincode(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.App.Gateway.Delete(r.Context(), server.Token(r.Context()), "settings/api/pincodes/"+id); err != nil {
		common.RelayError(w, err)
		return
	}
	common.AuditLog(h.App, r, audit.ActionDelete, "pincodes", id, "Removed pincode")
	common.Notify(h.App, "pincodes", "delete", id)
	response.JSON(w, map[string]bool{"deleted": true})
}

var pincodeExportCols = []report.Column{
	{Header: "Pincode", Width: 26},
	{Header: "City", Width: 46},
	{Header: "State", Width: 44},
	{Header: "Serviceable", Width: 38},
	{Header: "COD", Width: 36},
}

func (h *Handler) ExportPincodes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchPincodes(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "serviceable", "cod", "state")
	filtered := pipeline.Filter(rows, st, pincodeConfig)

	states := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, p := range filtered {
		states[i] = p.State
		data[i] = []string{
			p.Code,
			p.City,
			p.State,
			yesNo(p.Serviceable),
			yesNo(p.CODAvailable),
		}
	}

	opts := report.Options{
		Title:       "Pincodes Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "pincodes", opts, report.SummarizeBy("state", states), pincodeExportCols, data)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
