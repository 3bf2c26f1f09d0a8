// pitstop is the admin dashboard service for the parts marketplace. It
// fronts the upstream marketplace API: handlers fetch raw rows through the
// gateway, derive the visible page locally, and forward mutations back
// upstream. The only state of its own is the sqlite side-store for saved
// searches, search history and the audit trail.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"

	"pitstop/internal/gateway"
	"pitstop/internal/handlers/admin"
	"pitstop/internal/handlers/catalog"
	"pitstop/internal/handlers/dealers"
	"pitstop/internal/handlers/orders"
	"pitstop/internal/handlers/support"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/store"
	"pitstop/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	apiURL := flag.String("api", "", "Upstream API base URL (overrides config)")
	dbPath := flag.String("db", "", "SQLite side-store path (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("store init failed: ", err)
	}
	defer st.Close()

	app := &server.App{
		Gateway:     gateway.New(cfg.APIBaseURL),
		Store:       st,
		Hub:         ws.NewHub(),
		ImageOrigin: cfg.ImageOrigin(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, map[string]string{"status": "ok", "service": cfg.CompanyName})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.Handle(app.Hub, w, r)
	})

	adminH := admin.New(app)
	mux.HandleFunc("/auth/login", post(adminH.Login))
	mux.HandleFunc("/auth/logout", post(adminH.Logout))
	mux.HandleFunc("/auth/me", adminH.Me)

	mux.HandleFunc("/api/v1/", router(app, adminH))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("pitstop listening on %s (upstream %s)", addr, cfg.APIBaseURL)
	log.Fatal(http.ListenAndServe(addr, server.Logging(server.RequireAuth(mux))))
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", 405)
			return
		}
		h(w, r)
	}
}

// router dispatches /api/v1/ requests. Paths are matched on their split
// segments the same way on every screen: collection, then id, then an
// optional sub-resource.
func router(app *server.App, adminH *admin.Handler) http.HandlerFunc {
	dealerH := dealers.New(app)
	catalogH := catalog.New(app)
	orderH := orders.New(app)
	supportH := support.New(app)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
		path = strings.TrimSuffix(path, "/")
		parts := strings.Split(path, "/")
		method := r.Method

		switch {
		// Dashboard and global search
		case path == "dashboard" && method == "GET":
			adminH.Dashboard(w, r)
		case path == "search" && method == "GET":
			adminH.GlobalSearch(w, r)

		// Dealers
		case path == "dealers" && method == "GET":
			dealerH.List(w, r)
		case path == "dealers" && method == "POST":
			dealerH.Create(w, r)
		case path == "dealers/export" && method == "GET":
			dealerH.Export(w, r)
		case len(parts) == 2 && parts[0] == "dealers" && method == "GET":
			dealerH.Get(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "dealers" && method == "PUT":
			dealerH.Update(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "dealers" && method == "DELETE":
			dealerH.Delete(w, r, parts[1])

		// Products
		case path == "products" && method == "GET":
			catalogH.List(w, r)
		case path == "products" && method == "POST":
			catalogH.Create(w, r)
		case path == "products/export" && method == "GET":
			catalogH.Export(w, r)
		case len(parts) == 3 && parts[0] == "products" && parts[2] == "stock" && method == "GET":
			catalogH.Stock(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "products" && method == "GET":
			catalogH.Get(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "products" && method == "PUT":
			catalogH.Update(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "products" && method == "DELETE":
			catalogH.Delete(w, r, parts[1])

		// Orders
		case path == "orders" && method == "GET":
			orderH.List(w, r)
		case path == "orders/export" && method == "GET":
			orderH.Export(w, r)
		case len(parts) == 3 && parts[0] == "orders" && parts[2] == "status" && method == "PATCH":
			orderH.UpdateStatus(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "orders" && method == "GET":
			orderH.Get(w, r, parts[1])

		// Pickups
		case path == "pickups" && method == "GET":
			orderH.ListPickups(w, r)
		case path == "pickups" && method == "POST":
			orderH.CreatePickup(w, r)
		case path == "pickups/export" && method == "GET":
			orderH.ExportPickups(w, r)
		case len(parts) == 3 && parts[0] == "pickups" && parts[2] == "assign" && method == "PATCH":
			orderH.AssignPickup(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "pickups" && method == "GET":
			orderH.GetPickup(w, r, parts[1])

		// Picklists
		case path == "picklists" && method == "GET":
			orderH.ListPickLists(w, r)
		case path == "picklists" && method == "POST":
			orderH.CreatePickList(w, r)
		case len(parts) == 3 && parts[0] == "picklists" && parts[2] == "status" && method == "PATCH":
			orderH.UpdatePickListStatus(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "picklists" && method == "GET":
			orderH.GetPickList(w, r, parts[1])

		// Tickets
		case path == "tickets" && method == "GET":
			supportH.ListTickets(w, r)
		case path == "tickets" && method == "POST":
			supportH.CreateTicket(w, r)
		case path == "tickets/export" && method == "GET":
			supportH.ExportTickets(w, r)
		case len(parts) == 2 && parts[0] == "tickets" && method == "GET":
			supportH.GetTicket(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "tickets" && method == "PUT":
			supportH.UpdateTicket(w, r, parts[1])

		// SLA violations
		case path == "sla/violations" && method == "GET":
			supportH.ListViolations(w, r)
		case path == "sla/violations/export" && method == "GET":
			supportH.ExportViolations(w, r)
		case len(parts) == 4 && parts[0] == "sla" && parts[1] == "violations" && parts[3] == "status" && method == "PATCH":
			supportH.UpdateViolation(w, r, parts[2])

		// Pincodes
		case path == "pincodes" && method == "GET":
			adminH.ListPincodes(w, r)
		case path == "pincodes" && method == "POST":
			adminH.CreatePincode(w, r)
		case path == "pincodes/export" && method == "GET":
			adminH.ExportPincodes(w, r)
		case len(parts) == 2 && parts[0] == "pincodes" && method == "PUT":
			adminH.UpdatePincode(w, r, parts[1])
		case len(parts) == 2 && parts[0] == "pincodes" && method == "DELETE":
			adminH.DeletePincode(w, r, parts[1])

		// Settings
		case path == "settings" && method == "GET":
			adminH.GetSettings(w, r)
		case path == "settings" && method == "PUT":
			adminH.UpdateSettings(w, r)

		// Saved searches and history
		case path == "searches" && method == "GET":
			adminH.ListSearches(w, r)
		case path == "searches" && method == "POST":
			adminH.CreateSearch(w, r)
		case len(parts) == 2 && parts[0] == "searches" && method == "DELETE":
			adminH.DeleteSearch(w, r, parts[1])
		case path == "searches/history" && method == "GET":
			adminH.SearchHistory(w, r)

		// Audit trail
		case path == "audit" && method == "GET":
			adminH.AuditLog(w, r)

		default:
			response.Err(w, "Not found", 404)
		}
	}
}
