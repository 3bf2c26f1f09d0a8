// Package orders implements the order management screens: orders, pickup
// scheduling, and picklist batching.
package orders

import (
	"context"
	"fmt"
	"net/http"
	"time"

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

var orderStatuses = []string{"placed", "confirmed", "packed", "shipped", "delivered", "cancelled"}

// OrderRow is an order joined with its resolved dealer name.
type OrderRow struct {
	models.Order
	DealerName string `json:"dealer_name"`
}

var orderConfig = pipeline.Config[OrderRow]{
	SearchFields: []func(OrderRow) string{
		func(o OrderRow) string { return o.OrderNumber },
		func(o OrderRow) string { return o.CustomerName },
		func(o OrderRow) string { return o.DealerName },
	},
	SortFields: map[string]func(OrderRow) interface{}{
		"order_number": func(o OrderRow) interface{} { return o.OrderNumber },
		"dealer_name":  func(o OrderRow) interface{} { return o.DealerName },
		"total":        func(o OrderRow) interface{} { return o.Total },
		"status":       func(o OrderRow) interface{} { return o.Status },
		"created_at":   func(o OrderRow) interface{} { return o.CreatedAt },
	},
	FilterFields: map[string]func(OrderRow, string) bool{
		"status": func(o OrderRow, v string) bool { return o.Status == v },
		"dealer": func(o OrderRow, v string) bool { return o.DealerID == v },
		"range": func(o OrderRow, v string) bool {
			return pipeline.InRange(o.CreatedAt, v, time.Now())
		},
	},
}

func (h *Handler) fetchOrders(r *http.Request) ([]OrderRow, error) {
	var orders []models.Order
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "order/api/orders", &orders); err != nil {
		return nil, err
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.DealerID
	}
	resolved := h.dealers.ResolveAll(r.Context(), ids)

	rows := make([]OrderRow, len(orders))
	for i, o := range orders {
		name := o.DealerID
		if d, ok := resolved[o.DealerID]; ok {
			name = d.LegalName
		}
		rows[i] = OrderRow{Order: o, DealerName: name}
	}
	return rows, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchOrders(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "dealer", "range")
	common.RecordSearch(h.App, r, "orders", st)
	common.RespondPage(w, pipeline.Apply(rows, st, orderConfig))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	var order models.Order
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "order/api/orders/"+id, &order); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, order)
}

// UpdateStatus advances an order through its lifecycle. Only the status
// field travels upstream; everything else on the order is read-only here.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "status", body.Status)
	validation.ValidateEnum(&ve, "status", body.Status, orderStatuses)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Order
	err := h.App.Gateway.Patch(r.Context(), server.Token(r.Context()),
		"order/api/orders/"+id+"/status", body, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "orders", id,
		fmt.Sprintf("Order %s moved to %s", updated.OrderNumber, body.Status))
	common.Notify(h.App, "orders", "update", id)
	response.JSON(w, updated)
}

var orderExportCols = []report.Column{
	{Header: "Order #", Width: 32},
	{Header: "Dealer", Width: 48},
	{Header: "Customer", Width: 36},
	{Header: "Total", Width: 24},
	{Header: "Status", Width: 26},
	{Header: "Placed", Width: 24},
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetchOrders(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "dealer", "range")
	filtered := pipeline.Filter(rows, st, orderConfig)

	statuses := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, o := range filtered {
		statuses[i] = o.Status
		data[i] = []string{
			o.OrderNumber,
			o.DealerName,
			common.OrDash(o.CustomerName),
			fmt.Sprintf("%.2f", o.Total),
			o.Status,
			o.CreatedAt.Format("2006-01-02"),
		}
	}

	opts := report.Options{
		Title:       "Orders Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "orders", opts, report.SummarizeBy("status", statuses), orderExportCols, data)
}
