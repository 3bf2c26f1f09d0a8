// Package support implements the support desk screens: tickets and SLA
// violation tracking.
package support

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pitstop/internal/audit"
	"pitstop/internal/enrich"
	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/pipeline"
	"pitstop/internal/report"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

type Handler struct {
	App     *server.App
	dealers *enrich.Resolver[models.DealerInfo]
	staff   *enrich.Resolver[models.Staff]
}

func New(app *server.App) *Handler {
	h := &Handler{App: app}
	h.dealers = enrich.NewResolver(func(ctx context.Context, id string) (models.DealerInfo, error) {
		var d models.DealerInfo
		err := app.Gateway.Get(ctx, server.Token(ctx), "dealer/api/dealers/"+id, &d)
		return d, err
	})
	h.staff = enrich.NewResolver(func(ctx context.Context, id string) (models.Staff, error) {
		var s models.Staff
		err := app.Gateway.Get(ctx, server.Token(ctx), "dealer/api/staff/"+id, &s)
		return s, err
	})
	return h
}

var (
	ticketStatuses   = []string{"open", "in_progress", "resolved", "closed"}
	ticketPriorities = []string{"low", "medium", "high", "urgent"}
)

// TicketRow is a ticket joined with resolved dealer and assignee names.
type TicketRow struct {
	models.Ticket
	DealerName   string `json:"dealer_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}

var ticketConfig = pipeline.Config[TicketRow]{
	SearchFields: []func(TicketRow) string{
		func(t TicketRow) string { return t.Subject },
		func(t TicketRow) string { return t.DealerName },
		func(t TicketRow) string { return t.AssigneeName },
	},
	SortFields: map[string]func(TicketRow) interface{}{
		"subject":    func(t TicketRow) interface{} { return t.Subject },
		"status":     func(t TicketRow) interface{} { return t.Status },
		"priority":   func(t TicketRow) interface{} { return priorityRank(t.Priority) },
		"created_at": func(t TicketRow) interface{} { return t.CreatedAt },
		"updated_at": func(t TicketRow) interface{} { return t.UpdatedAt },
	},
	FilterFields: map[string]func(TicketRow, string) bool{
		"status":   func(t TicketRow, v string) bool { return t.Status == v },
		"priority": func(t TicketRow, v string) bool { return t.Priority == v },
		"assigned": func(t TicketRow, v string) bool {
			if v == "yes" {
				return t.AssignedTo != ""
			}
			return t.AssignedTo == ""
		},
		"range": func(t TicketRow, v string) bool {
			return pipeline.InRange(t.CreatedAt, v, time.Now())
		},
	},
}

// priorityRank orders priorities by urgency rather than alphabetically.
func priorityRank(p string) int {
	switch p {
	case "urgent":
		return 3
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}

func (h *Handler) fetchTickets(r *http.Request) ([]TicketRow, error) {
	var tickets []models.Ticket
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "support/api/tickets", &tickets); err != nil {
		return nil, err
	}

	dealerIDs := make([]string, 0, len(tickets))
	staffIDs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		dealerIDs = append(dealerIDs, t.DealerID)
		staffIDs = append(staffIDs, t.AssignedTo)
	}
	dealers := h.dealers.ResolveAll(r.Context(), dealerIDs)
	staff := h.staff.ResolveAll(r.Context(), staffIDs)

	rows := make([]TicketRow, len(tickets))
	for i, t := range tickets {
		row := TicketRow{Ticket: t, DealerName: t.DealerID, AssigneeName: t.AssignedTo}
		if d, ok := dealers[t.DealerID]; ok {
			row.DealerName = d.LegalName
		}
		if s, ok := staff[t.AssignedTo]; ok {
			row.AssigneeName = s.Name
		}
		rows[i] = row
	}
	return rows, nil
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchTickets(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "priority", "assigned", "range")
	common.RecordSearch(h.App, r, "tickets", st)
	common.RespondPage(w, pipeline.Apply(rows, st, ticketConfig))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request, id string) {
	var ticket models.Ticket
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "support/api/tickets/"+id, &ticket); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, ticket)
}

func validateTicket(t models.Ticket) *validation.ValidationErrors {
	var ve validation.ValidationErrors
	validation.RequireField(&ve, "subject", t.Subject)
	validation.ValidateEnum(&ve, "status", t.Status, ticketStatuses)
	validation.ValidateEnum(&ve, "priority", t.Priority, ticketPriorities)
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var draft models.Ticket
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateTicket(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var created models.Ticket
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"support/api/tickets", uuid.New().String(), draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "tickets", created.ID,
		fmt.Sprintf("Opened ticket %q", created.Subject))
	common.Notify(h.App, "tickets", "create", created.ID)
	response.JSON(w, created)
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request, id string) {
	var draft models.Ticket
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateTicket(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Ticket
	err := h.App.Gateway.Put(r.Context(), server.Token(r.Context()), "support/api/tickets/"+id, draft, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "tickets", id,
		fmt.Sprintf("Updated ticket %q", updated.Subject))
	common.Notify(h.App, "tickets", "update", id)
	response.JSON(w, updated)
}

var ticketExportCols = []report.Column{
	{Header: "Subject", Width: 56},
	{Header: "Dealer", Width: 40},
	{Header: "Assignee", Width: 32},
	{Header: "Priority", Width: 20},
	{Header: "Status", Width: 22},
	{Header: "Opened", Width: 20},
}

func (h *Handler) ExportTickets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchTickets(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "priority", "assigned", "range")
	filtered := pipeline.Filter(rows, st, ticketConfig)

	statuses := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, t := range filtered {
		statuses[i] = t.Status
		data[i] = []string{
			t.Subject,
			common.OrDash(t.DealerName),
			common.OrDash(t.AssigneeName),
			common.OrDash(t.Priority),
			t.Status,
			t.CreatedAt.Format("2006-01-02"),
		}
	}

	opts := report.Options{
		Title:       "Tickets Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "tickets", opts, report.SummarizeBy("status", statuses), ticketExportCols, data)
}
