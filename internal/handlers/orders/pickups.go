package orders

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

var pickupStatuses = []string{"pending", "assigned", "picked", "failed", "cancelled"}

// PickupRow is a pickup joined with its display references: order number,
// dealer name and assigned staff name, each falling back to the raw id.
type PickupRow struct {
	models.Pickup
	OrderNumber string `json:"order_number"`
	DealerName  string `json:"dealer_name"`
	StaffName   string `json:"staff_name,omitempty"`
}

var pickupConfig = pipeline.Config[PickupRow]{
	SearchFields: []func(PickupRow) string{
		func(p PickupRow) string { return p.OrderNumber },
		func(p PickupRow) string { return p.DealerName },
		func(p PickupRow) string { return p.StaffName },
	},
	SortFields: map[string]func(PickupRow) interface{}{
		"order_number": func(p PickupRow) interface{} { return p.OrderNumber },
		"dealer_name":  func(p PickupRow) interface{} { return p.DealerName },
		"status":       func(p PickupRow) interface{} { return p.Status },
		"scheduled_at": func(p PickupRow) interface{} { return p.ScheduledAt },
		"created_at":   func(p PickupRow) interface{} { return p.CreatedAt },
	},
	FilterFields: map[string]func(PickupRow, string) bool{
		"status": func(p PickupRow, v string) bool { return p.Status == v },
		"assigned": func(p PickupRow, v string) bool {
			if v == "yes" {
				return p.StaffID != ""
			}
			return p.StaffID == ""
		},
		"range": func(p PickupRow, v string) bool {
			return pipeline.InRange(p.CreatedAt, v, time.Now())
		},
	},
}

func (h *Handler) fetchPickups(r *http.Request) ([]PickupRow, error) {
	var pickups []models.Pickup
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "logistics/api/pickups", &pickups); err != nil {
		return nil, err
	}

	dealerIDs := make([]string, 0, len(pickups))
	staffIDs := make([]string, 0, len(pickups))
	for _, p := range pickups {
		dealerIDs = append(dealerIDs, p.DealerID)
		staffIDs = append(staffIDs, p.StaffID)
	}
	dealers := h.dealers.ResolveAll(r.Context(), dealerIDs)
	staff := h.staff.ResolveAll(r.Context(), staffIDs)

	rows := make([]PickupRow, len(pickups))
	for i, p := range pickups {
		row := PickupRow{
			Pickup:      p,
			OrderNumber: p.Order.Display(),
			DealerName:  p.DealerID,
			StaffName:   p.StaffID,
		}
		if d, ok := dealers[p.DealerID]; ok {
			row.DealerName = d.LegalName
		}
		if s, ok := staff[p.StaffID]; ok {
			row.StaffName = s.Name
		}
		rows[i] = row
	}
	return rows, nil
}

func (h *Handler) ListPickups(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchPickups(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "assigned", "range")
	common.RecordSearch(h.App, r, "pickups", st)
	common.RespondPage(w, pipeline.Apply(rows, st, pickupConfig))
}

func (h *Handler) GetPickup(w http.ResponseWriter, r *http.Request, id string) {
	var pickup models.Pickup
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "logistics/api/pickups/"+id, &pickup); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, pickup)
}

func (h *Handler) CreatePickup(w http.ResponseWriter, r *http.Request) {
	var draft struct {
		OrderID     string    `json:"order_id"`
		DealerID    string    `json:"dealer_id"`
		ScheduledAt time.Time `json:"scheduled_at"`
	}
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "order_id", draft.OrderID)
	validation.RequireField(&ve, "dealer_id", draft.DealerID)
	if draft.ScheduledAt.IsZero() {
		ve.Add("scheduled_at", "is required")
	}
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var created models.Pickup
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"logistics/api/pickups", uuid.New().String(), draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "pickups", created.ID,
		fmt.Sprintf("Scheduled pickup for order %s", created.Order.Display()))
	common.Notify(h.App, "pickups", "create", created.ID)
	response.JSON(w, created)
}

// AssignPickup attaches a staff member to a pending pickup.
func (h *Handler) AssignPickup(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		StaffID string `json:"staff_id"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "staff_id", body.StaffID)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Pickup
	err := h.App.Gateway.Patch(r.Context(), server.Token(r.Context()),
		"logistics/api/pickups/"+id+"/assign", body, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionAssign, "pickups", id,
		fmt.Sprintf("Assigned staff %s to pickup", body.StaffID))
	common.Notify(h.App, "pickups", "update", id)
	response.JSON(w, updated)
}

var pickupExportCols = []report.Column{
	{Header: "Order #", Width: 32},
	{Header: "Dealer", Width: 48},
	{Header: "Staff", Width: 36},
	{Header: "Status", Width: 26},
	{Header: "Scheduled", Width: 24},
	{Header: "Created", Width: 24},
}

func (h *Handler) ExportPickups(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchPickups(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "assigned", "range")
	filtered := pipeline.Filter(rows, st, pickupConfig)

	statuses := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, p := range filtered {
		statuses[i] = p.Status
		data[i] = []string{
			p.OrderNumber,
			p.DealerName,
			common.OrDash(p.StaffName),
			p.Status,
			p.ScheduledAt.Format("2006-01-02 15:04"),
			p.CreatedAt.Format("2006-01-02"),
		}
	}

	opts := report.Options{
		Title:       "Pickups Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "pickups", opts, report.SummarizeBy("status", statuses), pickupExportCols, data)
}
