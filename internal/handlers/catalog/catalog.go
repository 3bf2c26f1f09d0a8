// Package catalog implements the product catalog screen, including the
// per-product stock movement view.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
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
}

func New(app *server.App) *Handler {
	h := &Handler{App: app}
	h.dealers = enrich.NewResolver(func(ctx context.Context, id string) (models.DealerInfo, error) {
		var d models.DealerInfo
		err := app.Gateway.Get(ctx, server.Token(ctx), "dealer/api/dealers/"+id, &d)
		return d, err
	})
	return h
}

var productStatuses = []string{"draft", "active", "out_of_stock", "discontinued"}

// Row is a product joined with its resolved dealer name. DealerName falls
// back to the raw id when the lookup did not resolve.
type Row struct {
	models.Product
	DealerName string `json:"dealer_name"`
}

var listConfig = pipeline.Config[Row]{
	SearchFields: []func(Row) string{
		func(p Row) string { return p.SKU },
		func(p Row) string { return p.Name },
		func(p Row) string { return p.Brand },
		func(p Row) string { return p.Category },
		func(p Row) string { return p.DealerName },
	},
	SortFields: map[string]func(Row) interface{}{
		"name":        func(p Row) interface{} { return p.Name },
		"sku":         func(p Row) interface{} { return p.SKU },
		"price":       func(p Row) interface{} { return p.Price },
		"dealer_name": func(p Row) interface{} { return p.DealerName },
		"status":      func(p Row) interface{} { return p.Status },
		"created_at":  func(p Row) interface{} { return p.CreatedAt },
	},
	FilterFields: map[string]func(Row, string) bool{
		"status":   func(p Row, v string) bool { return p.Status == v },
		"category": func(p Row, v string) bool { return p.Category == v },
		"dealer":   func(p Row, v string) bool { return p.DealerID == v },
		"range": func(p Row, v string) bool {
			return pipeline.InRange(p.CreatedAt, v, time.Now())
		},
	},
}

// absolutize rewrites a relative upstream image path against the configured
// asset origin. Already-absolute URLs pass through untouched.
func (h *Handler) absolutize(p *models.Product) {
	if p.ImagePath == "" || !strings.HasPrefix(p.ImagePath, "/") {
		return
	}
	p.ImagePath = h.App.ImageOrigin + p.ImagePath
}

func (h *Handler) fetch(r *http.Request) ([]Row, error) {
	var products []models.Product
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "catalog/api/products", &products); err != nil {
		return nil, err
	}
	for i := range products {
		h.absolutize(&products[i])
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.DealerID
	}
	resolved := h.dealers.ResolveAll(r.Context(), ids)

	rows := make([]Row, len(products))
	for i, p := range products {
		name := p.DealerID
		if d, ok := resolved[p.DealerID]; ok {
			name = d.LegalName
		}
		rows[i] = Row{Product: p, DealerName: name}
	}
	return rows, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetch(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "category", "dealer", "range")
	common.RecordSearch(h.App, r, "products", st)
	common.RespondPage(w, pipeline.Apply(rows, st, listConfig))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	var product models.Product
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "catalog/api/products/"+id, &product); err != nil {
		common.RelayError(w, err)
		return
	}
	h.absolutize(&product)
	response.JSON(w, product)
}

// Stock returns a product's stock movement trail, newest first. The
// upstream does not guarantee an order here so we sort client-side.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request, id string) {
	var product models.Product
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "catalog/api/products/"+id, &product); err != nil {
		common.RelayError(w, err)
		return
	}

	movements := product.Movements
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].At.After(movements[j].At)
	})
	response.JSON(w, map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
		"movements":  movements,
	})
}

func validateProduct(p models.Product) *validation.ValidationErrors {
	var ve validation.ValidationErrors
	validation.RequireField(&ve, "sku", p.SKU)
	validation.RequireField(&ve, "name", p.Name)
	validation.RequireField(&ve, "dealer_id", p.DealerID)
	validation.ValidatePositiveFloat(&ve, "price", p.Price)
	validation.ValidateEnum(&ve, "status", p.Status, productStatuses)
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.Product
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateProduct(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var created models.Product
	err := h.App.Gateway.PostIdempotent(r.Context(), server.Token(r.Context()),
		"catalog/api/products", uuid.New().String(), draft, &created)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionCreate, "products", created.ID,
		fmt.Sprintf("Created product %s (%s)", created.Name, created.SKU))
	common.Notify(h.App, "products", "create", created.ID)
	h.absolutize(&created)
	response.JSON(w, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var draft models.Product
	if err := response.DecodeBody(r, &draft); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}
	if ve := validateProduct(draft); ve != nil {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var updated models.Product
	err := h.App.Gateway.Put(r.Context(), server.Token(r.Context()), "catalog/api/products/"+id, draft, &updated)
	if err != nil {
		common.RelayError(w, err)
		return
	}

	common.AuditLog(h.App, r, audit.ActionUpdate, "products", id,
		fmt.Sprintf("Updated product %s", updated.SKU))
	common.Notify(h.App, "products", "update", id)
	h.absolutize(&updated)
	response.JSON(w, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.App.Gateway.Delete(r.Context(), server.Token(r.Context()), "catalog/api/products/"+id); err != nil {
		common.RelayError(w, err)
		return
	}
	common.AuditLog(h.App, r, audit.ActionDelete, "products", id, "Deleted product")
	common.Notify(h.App, "products", "delete", id)
	response.JSON(w, map[string]bool{"deleted": true})
}

var exportCols = []report.Column{
	{Header: "SKU", Width: 30},
	{Header: "Name", Width: 52},
	{Header: "Dealer", Width: 40},
	{Header: "Price", Width: 20},
	{Header: "Status", Width: 26},
	{Header: "Added", Width: 22},
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fetch(r)
	if err != nil {
		common.RelayError(w, err)
		return
	}
	st := pipeline.FromQuery(r.URL.Query(), "status", "category", "dealer", "range")
	filtered := pipeline.Filter(rows, st, listConfig)

	statuses := make([]string, len(filtered))
	data := make([][]string, len(filtered))
	for i, p := range filtered {
		statuses[i] = p.Status
		data[i] = []string{
			p.SKU,
			p.Name,
			p.DealerName,
			fmt.Sprintf("%.2f", p.Price),
			p.Status,
			p.CreatedAt.Format("2006-01-02"),
		}
	}

	opts := report.Options{
		Title:       "Products Report",
		GeneratedAt: time.Now(),
		Filters:     common.ExportFilters(st),
	}
	common.Export(w, r, h.App, "products", opts, report.SummarizeBy("status", statuses), exportCols, data)
}
