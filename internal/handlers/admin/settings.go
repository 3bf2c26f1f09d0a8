package admin

import (
	"net/http"

	"pitstop/internal/audit"
	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	var s models.Settings
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "settings/api/app-settings", &s); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, s)
}

// UpdateSettings replaces the platform settings wholesale. SLA windows are
// bounded to keep a fat-fingered value from silently flagging every order.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var draft models.Settings
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "support_email", draft.SupportEmail)
	validation.ValidateEmail(&ve, "support_email", draft.SupportEmail)
	validation.ValidatePhone(&ve, "support_phone", draft.SupportPhone)
	validation.ValidateRange(&ve, "pickup_sla_minutes", draft.PickupSLAMinutes, 15, 10080)
	validation.ValidateRange(&ve, "delivery_sla_minutes", draft.DeliverySLAMinutes, 30, 43200)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Settings
	err := h.App.Gateway.Put(r.Context(), server.Token(r.Context()), "settings/api/app-settings", draft, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "settings", "", "Updated platform settings")
	common.Notify(h.App, "settings", "update", "")
	response.JSON(w, updated)
}
