// Package dealers implements the dealer management screen.
package dealers

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

var dealerStatuses = []string{"pending", "active", "suspended", "rejected"}

var listConfig = pipeline.Config[models.Dealer]{
	SearchFields: []func(models.Dealer) string{
		func(d models.Dealer) string { return d.ID },
		func(d models.Dealer) string { return d.LegalName },
		func(d models.Dealer) string { return d.TradeName },
		func(d models.Dealer) string { return d.Email },
		func(d models.Dealer) string { return d.Phone },
		func(d models.Dealer) string { return d.City },
	},
	SortFields: map[string]func(models.Dealer) interface{}{
		"legal_name": func(d models.Dealer) interface{} { return d.LegalName },
		"city":       func(d models.Dealer) interface{} { return d.City },
		"status":     func(d models.Dealer) interface{} { return d.Status },
		"created_at": func(d models.Dealer) interface{} { return d.CreatedAt },
	},
	FilterFields: map[string]func(models.Dealer, string) bool{
		"status": func(d models.Dealer, v string) bool { return d.Status == v },
		"range": func(d models.Dealer, v string) bool {
			return pipeline.InRange(d.CreatedAt, v, time.Now())
		},
	},
}

func (h *Handler) fetch(r *http.Request) ([]models.Dealer, error) {
	var rows []models.Dealer
	err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "dealer/api/dealers", &rows)
	return rows, err
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetch(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "range")
	common.RecordSearch(h.App, r, "dealers", st)
	common.RespondPage(w, pipeline.Apply(rows, st, listConfig))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	var dealer models.Dealer
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "dealer/api/dealers/"+id, &dealer); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, dealer)
}

func validateDealer(d models.Dealer) *validation.ValidationErrors {
	var ve validation.ValidationErrors
	validation.RequireField(&ve, "legal_name", d.LegalName)
	validation.RequireField(&ve, "email", d.Email)
	validation.RequireField(&ve, "phone", d.Phone)
	validation.ValidateEmail(&ve, "email", d.Email)
	validation.ValidatePhone(&ve, "phone", d.Phone)
	validation.ValidatePincode(&ve, "pincode", d.Pincode)
	validation.ValidateGSTNumber(&ve, "gst_number", d.GSTNumber)
	validation.ValidateEnum(&ve, "status", d.Status, dealerStatuses)
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.Dealer
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateDealer(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var created models.Dealer
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"dealer/api/dealers", uuid.New().String(), draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "dealers", created.ID,
		fmt.Sprintf("Created dealer %s", created.LegalName))
	common.Notify(h.App, "dealers", "create", created.ID)
	response.JSON(w, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var draft models.Dealer
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateDealer(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Dealer
	err := h.App.Gateway.Put(r.Context(), server.Token(r.Context()), "dealer/api/dealers/"+id, draft, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "dealers", id,
		fmt.Sprintf("Updated dealer %s", updated.LegalName))
	common.Notify(h.App, "dealers", "update", id)
	response.JSON(w, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.App.Gateway.Delete(r.Context(), server.Token(r.Context()), "dealer/api/dealers/"+id); err != nil {
		common.RelayError(w, err)
		return
	}
	common.AuditLog(h.App, r, audit.ActionDelete, "dealers", id, "Deleted dealer")
	common.Notify(h.App, "dealers", "delete", id)
	response.JSON(w, map[string]bool{"deleted": true})
}

var exportCols = []report.Column{
	{Header: "Legal Name", Width: 50},
	{Header: "City", Width: 28},
	{Header: "Email", Width: 45},
	{Header: "Phone", Width: 27},
	{Header: "Status", Width: 22},
	{Header: "Registered", Width: 22},
}

// Export writes the filtered (never paginated) dealer set as pdf, csv or
// xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetch(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "range")
	filtered := pipeline.Filter(rows, st, listConfig)

	statuses := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, d := range filtered {
		statuses[i] = d.Status
		data[i] = []string{
			d.LegalName,
			common.OrDash(d.City),
			d.Email,
			d.Phone,
			d.Status,
			d.CreatedAt.Format("2006-01-02"),
		}
	}

	opts := report.Options{
		Title:       "Dealers Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "dealers", opts, report.SummarizeBy("status", statuses), exportCols, data)
}
