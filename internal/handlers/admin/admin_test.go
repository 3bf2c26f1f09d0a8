package admin

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"pitstop/internal/gateway"
	"pitstop/internal/models"
	"pitstop/internal/server"
	"pitstop/internal/testutil"
)

func TestCreatePincodeRejectsBadCode(t *testing.T) {
	u := testutil.NewUpstream(t)
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	tests := []struct {
		name string
		code string
	}{
		{"too short", "12345"},
		{"leading zero", "012345"},
		{"letters", "41100A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"code":"` + tt.code + `","city":"Pune","state":"MH"}`
			w := httptest.NewRecorder()
			h.CreatePincode(w, httptest.NewRequest("POST", "/api/v1/pincodes", strings.NewReader(body)))
			if w.Code != 422 {
				t.Errorf("code %q accepted with status %d", tt.code, w.Code)
			}
		})
	}
}

func TestSettingsUpdateBoundsSLAWindows(t *testing.T) {
	u := testutil.NewUpstream(t)
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	body := `{"support_email":"help@example.com","support_phone":"9876543210","pickup_sla_minutes":5,"delivery_sla_minutes":60}`
	w := httptest.NewRecorder()
	h.UpdateSettings(w, httptest.NewRequest("PUT", "/api/v1/settings", strings.NewReader(body)))

	if w.Code != 422 {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "pickup_sla_minutes") {
		t.Errorf("missing range error: %s", w.Body.String())
	}
}

func TestSavedSearchLifecycle(t *testing.T) {
	u := testutil.NewUpstream(t)
	st := testutil.OpenStore(t)
	h := New(&server.App{Gateway: gateway.New(u.URL), Store: st})

	// Create.
	body := `{"name":"Active Pune dealers","screen":"dealers","search":"pune","filters":"{\"status\":\"active\"}"}`
	w := httptest.NewRecorder()
	h.CreateSearch(w, httptest.NewRequest("POST", "/api/v1/searches", strings.NewReader(body)))
	if w.Code != 200 {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data models.SavedSearch `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.ID == "" {
		t.Fatal("no id assigned")
	}

	// List scoped to screen.
	w = httptest.NewRecorder()
	h.ListSearches(w, httptest.NewRequest("GET", "/api/v1/searches?screen=dealers", nil))
	var listed struct {
		Data []models.SavedSearch `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Data) != 1 || listed.Data[0].Name != "Active Pune dealers" {
		t.Fatalf("list = %+v", listed.Data)
	}

	// Delete.
	w = httptest.NewRecorder()
	h.DeleteSearch(w, httptest.NewRequest("DELETE", "/api/v1/searches/"+created.Data.ID, nil), created.Data.ID)
	if w.Code != 200 {
		t.Fatalf("delete status = %d", w.Code)
	}

	// Deleting again is a 404.
	w = httptest.NewRecorder()
	h.DeleteSearch(w, httptest.NewRequest("DELETE", "/api/v1/searches/"+created.Data.ID, nil), created.Data.ID)
	if w.Code != 404 {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestGlobalSearchSurvivesPartialOutage(t *testing.T) {
	u := testutil.NewUpstream(t)
	u.Routes["GET /dealer/api/dealers"] = []models.Dealer{
		{ID: "d1", LegalName: "Apex Brakes", Status: "active"},
	}
	u.Routes["GET /catalog/api/products"] = []models.Product{
		{ID: "p1", SKU: "BRK-1", Name: "Brake Pad"},
	}
	u.Fail["GET /order/api/orders"] = "order service down"
	u.Fail["GET /support/api/tickets"] = "support service down"

	h := New(&server.App{Gateway: gateway.New(u.URL)})
	w := httptest.NewRecorder()
	h.GlobalSearch(w, httptest.NewRequest("GET", "/api/v1/search?q=brake", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Dealers  []models.Dealer  `json:"dealers"`
			Products []models.Product `json:"products"`
			Orders   []models.Order   `json:"orders"`
			Tickets  []models.Ticket  `json:"tickets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data.Dealers) != 1 || len(resp.Data.Products) != 1 {
		t.Errorf("healthy sections missing: %+v", resp.Data)
	}
	if len(resp.Data.Orders) != 0 || len(resp.Data.Tickets) != 0 {
		t.Errorf("failed sections should be empty: %+v", resp.Data)
	}
}

func TestGlobalSearchRequiresTerm(t *testing.T) {
	u := testutil.NewUpstream(t)
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	w := httptest.NewRecorder()
	h.GlobalSearch(w, httptest.NewRequest("GET", "/api/v1/search", nil))
	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
