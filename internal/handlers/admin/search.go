package admin

import (
	"net/http"
	"strings"
	"sync"

	"pitstop/internal/models"
	"pitstop/internal/response"
	"pitstop/internal/server"
)

const globalSearchLimit = 5

func matches(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// GlobalSearch runs one search term across dealers, products, orders and
// tickets concurrently and returns the top matches per section. Sections
// that fail upstream are simply empty; the search box should never 500
// because one service is down.
func (h *Handler) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		response.Err(w, "Query parameter q is required", 400)
		return
	}

	ctx := r.Context()
	token := server.Token(ctx)

	results := map[string]interface{}{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	set := func(key string, v interface{}) {
		mu.Lock()
		results[key] = v
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var rows []models.Dealer
		if err := h.App.Gateway.Get(ctx, token, "dealer/api/dealers", &rows); err != nil {
			set("dealers", []models.Dealer{})
			return
		}
		out := []models.Dealer{}
		for _, d := range rows {
			if len(out) == globalSearchLimit {
				break
			}
			if matches(term, d.LegalName, d.TradeName, d.Email, d.Phone, d.City) {
				out = append(out, d)
			}
		}
		set("dealers", out)
	}()
	go func() {
		defer wg.Done()
		var rows []models.Product
		if err := h.App.Gateway.Get(ctx, token, "catalog/api/products", &rows); err != nil {
			set("products", []models.Product{})
			return
		}
		out := []models.Product{}
		for _, p := range rows {
			if len(out) == globalSearchLimit {
				break
			}
			if matches(term, p.SKU, p.Name, p.Brand, p.Category) {
				out = append(out, p)
			}
		}
		set("products", out)
	}()
	go func() {
		defer wg.Done()
		var rows []models.Order
		if err := h.App.Gateway.Get(ctx, token, "order/api/orders", &rows); err != nil {
			set("orders", []models.Order{})
			return
		}
		out := []models.Order{}
		for _, o := range rows {
			if len(out) == globalSearchLimit {
				break
			}
			if matches(term, o.OrderNumber, o.CustomerName) {
				out = append(out, o)
			}
		}
		set("orders", out)
	}()
	go func() {
		defer wg.Done()
		var rows []models.Ticket
		if err := h.App.Gateway.Get(ctx, token, "support/api/tickets", &rows); err != nil {
			set("tickets", []models.Ticket{})
			return
		}
		out := []models.Ticket{}
		for _, t := range rows {
			if len(out) == globalSearchLimit {
				break
			}
			if matches(term, t.Subject, t.Description) {
				out = append(out, t)
			}
		}
		set("tickets", out)
	}()
	wg.Wait()

	response.JSON(w, results)
}
