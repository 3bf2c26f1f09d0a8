package orders

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pitstop/internal/audit"
	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/pipeline"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

var picklistStatuses = []string{"open", "in_progress", "completed"}

// PickListRow is a picklist joined with the assigned staff name.
type PickListRow struct {
	models.PickList
	StaffName   string `json:"staff_name"`
	PickupCount int    `json:"pickup_count"`
}

var picklistConfig = pipeline.Config[PickListRow]{
	SearchFields: []func(PickListRow) string{
		func(p PickListRow) string { return p.Number },
		func(p PickListRow) string { return p.StaffName },
	},
	SortFields: map[string]func(PickListRow) interface{}{
		"number":       func(p PickListRow) interface{} { return p.Number },
		"staff_name":   func(p PickListRow) interface{} { return p.StaffName },
		"status":       func(p PickListRow) interface{} { return p.Status },
		"pickup_count": func(p PickListRow) interface{} { return p.PickupCount },
		"created_at":   func(p PickListRow) interface{} { return p.CreatedAt },
	},
	FilterFields: map[string]func(PickListRow, string) bool{
		"status": func(p PickListRow, v string) bool { return p.Status == v },
		"range": func(p PickListRow, v string) bool {
			return pipeline.InRange(p.CreatedAt, v, time.Now())
		},
	},
}

func (h *Handler) fetchPickLists(r *http.Request) ([]PickListRow, error) {
	var lists []models.PickList
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "logistics/api/picklists", &lists); err != nil {
		return nil, err
	}

	ids := make([]string, len(lists))
	for i, l := range lists {
		ids[i] = l.StaffID
	}
	staff := h.staff.ResolveAll(r.Context(), ids)

	rows := make([]PickListRow, len(lists))
	for i, l := range lists {
		name := l.StaffID
		if s, ok := staff[l.StaffID]; ok {
			name = s.Name
		}
		rows[i] = PickListRow{PickList: l, StaffName: name, PickupCount: len(l.PickupIDs)}
	}
	return rows, nil
}

func (h *Handler) ListPickLists(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchPickLists(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "range")
	common.RecordSearch(h.App, r, "picklists", st)
	common.RespondPage(w, pipeline.Apply(rows, st, picklistConfig))
}

func (h *Handler) GetPickList(w http.ResponseWriter, r *http.Request, id string) {
	var list models.PickList
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "logistics/api/picklists/"+id, &list); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, list)
}

// CreatePickList batches a set of pending pickups under one staff member.
// The picklist number is minted here so it is printable before the upstream
// round-trip completes on slow links.
func (h *Handler) CreatePickList(w http.ResponseWriter, r *http.Request) {
	var draft struct {
		StaffID   string   `json:"staff_id"`
		PickupIDs []string `json:"pickup_ids"`
		Number    string   `json:"number"`
	}
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "staff_id", draft.StaffID)
	if len(draft.PickupIDs) == 0 {
		ve.Add("pickup_ids", "at least one pickup is required")
	}
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	key := uuid.New().String()
	draft.Number = "PL-" + strings.ToUpper(key[:8])

	var created models.PickList
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"logistics/api/picklists", key, draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "picklists", created.ID,
		fmt.Sprintf("Created picklist %s with %d pickups", created.Number, len(draft.PickupIDs)))
	common.Notify(h.App, "picklists", "create", created.ID)
	response.JSON(w, created)
}

func (h *Handler) UpdatePickListStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "status", body.Status)
	validation.ValidateEnum(&ve, "status", body.Status, picklistStatuses)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.PickList
	err := h.App.Gateway.Patch(r.Context(), server.Token(r.Context()),
		"logistics/api/picklists/"+id+"/status", body, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "picklists", id,
		fmt.Sprintf("Picklist %s moved to %s", updated.Number, body.Status))
	common.Notify(h.App, "picklists", "update", id)
	response.JSON(w, updated)
}
