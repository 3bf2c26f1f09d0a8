package admin

import (
	"net/http"
	"sync"

	"pitstop/internal/models"
	"pitstop/internal/response"
	"pitstop/internal/server"
)

// Dashboard assembles the landing-page summary by fanning out to the
// upstream services concurrently. A failed section reports -1 rather than
// failing the whole summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := server.Token(ctx)

	counts := map[string]int{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	count := func(key, path string, dest interface{}, length func() int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := -1
			if err := h.App.Gateway.Get(ctx, token, path, dest); err == nil {
				n = length()
			}
			mu.Lock()
			counts[key] = n
			mu.Unlock()
		}()
	}

	var dealers []models.Dealer
	var products []models.Product
	var orders []models.Order
	var pickups []models.Pickup
	var tickets []models.Ticket
	var violations []models.SLAViolation

	count("dealers", "dealer/api/dealers", &dealers, func() int { return len(dealers) })
	count("products", "catalog/api/products", &products, func() int { return len(products) })
	count("orders", "order/api/orders", &orders, func() int { return len(orders) })
	count("pickups", "logistics/api/pickups", &pickups, func() int { return len(pickups) })
	count("tickets", "support/api/tickets", &tickets, func() int { return len(tickets) })
	count("sla_violations", "support/api/sla-violations", &violations, func() int { return len(violations) })
	wg.Wait()

	pendingPickups := 0
	for _, p := range pickups {
		if p.Status == "pending" {
			pendingPickups++
		}
	}
	openTickets := 0
	for _, t := range tickets {
		if t.Status == "open" || t.Status == "in_progress" {
			openTickets++
		}
	}
	openViolations := 0
	for _, v := range violations {
		if v.Status == "open" {
			openViolations++
		}
	}

	response.JSON(w, map[string]interface{}{
		"counts":              counts,
		"pending_pickups":     pendingPickups,
		"open_tickets":        openTickets,
		"open_sla_violations": openViolations,
	})
}
