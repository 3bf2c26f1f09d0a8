package orders

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

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	u := testutil.NewUpstream(t)
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	w := httptest.NewRecorder()
	h.UpdateStatus(w, httptest.NewRequest("PATCH", "/api/v1/orders/o1/status",
		strings.NewReader(`{"status":"teleported"}`)), "o1")

	if w.Code != 422 {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "must be one of") {
		t.Errorf("missing enum message: %s", w.Body.String())
	}
}

func TestUpdateStatusForwardsValidTransition(t *testing.T) {
	u := testutil.NewUpstream(t)
	u.Routes["PATCH /order/api/orders/o1/status"] = models.Order{ID: "o1", OrderNumber: "ORD-1001", Status: "shipped"}
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	w := httptest.NewRecorder()
	h.UpdateStatus(w, httptest.NewRequest("PATCH", "/api/v1/orders/o1/status",
		strings.NewReader(`{"status":"shipped"}`)), "o1")

	if w.Code != 200 {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data models.Order `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Status != "shipped" {
		t.Errorf("status = %q", resp.Data.Status)
	}
}

func TestPickupListResolvesOrderReferences(t *testing.T) {
	u := testutil.NewUpstream(t)
	// Upstream mixes bare-id and embedded-object order references.
	u.Routes["GET /logistics/api/pickups"] = []map[string]interface{}{
		{"_id": "pk1", "order_id": "o77", "dealer_id": "d1", "status": "pending"},
		{"_id": "pk2", "order_id": map[string]string{"_id": "o88", "order_number": "ORD-2002"}, "dealer_id": "d1", "status": "assigned", "staff_id": "s1"},
	}
	u.Routes["GET /dealer/api/dealers/d1"] = models.DealerInfo{ID: "d1", LegalName: "Apex Auto Parts"}
	u.Routes["GET /dealer/api/staff/s1"] = models.Staff{ID: "s1", Name: "Ravi Kumar"}

	h := New(&server.App{Gateway: gateway.New(u.URL)})
	w := httptest.NewRecorder()
	h.ListPickups(w, httptest.NewRequest("GET", "/api/v1/pickups?sort_by=status", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []PickupRow `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d rows", len(resp.Data))
	}

	byID := map[string]PickupRow{}
	for _, row := range resp.Data {
		byID[row.ID] = row
	}
	if byID["pk1"].OrderNumber != "o77" {
		t.Errorf("bare reference should display raw id, got %q", byID["pk1"].OrderNumber)
	}
	if byID["pk2"].OrderNumber != "ORD-2002" {
		t.Errorf("embedded reference should display order number, got %q", byID["pk2"].OrderNumber)
	}
	if byID["pk2"].StaffName != "Ravi Kumar" {
		t.Errorf("staff name = %q", byID["pk2"].StaffName)
	}
	if byID["pk1"].DealerName != "Apex Auto Parts" {
		t.Errorf("dealer name = %q", byID["pk1"].DealerName)
	}
}

func TestCreatePickListMintsNumber(t *testing.T) {
	u := testutil.NewUpstream(t)
	var received struct {
		Number    string   `json:"number"`
		StaffID   string   `json:"staff_id"`
		PickupIDs []string `json:"pickup_ids"`
	}
	u.Capture = func(method, path string, body []byte) {
		if method == "POST" && path == "/logistics/api/picklists" {
			json.Unmarshal(body, &received)
		}
	}
	u.Routes["POST /logistics/api/picklists"] = models.PickList{ID: "pl1", Number: "PL-XYZ", Status: "open"}

	h := New(&server.App{Gateway: gateway.New(u.URL)})
	w := httptest.NewRecorder()
	h.CreatePickList(w, httptest.NewRequest("POST", "/api/v1/picklists",
		strings.NewReader(`{"staff_id":"s1","pickup_ids":["pk1","pk2"]}`)))

	if w.Code != 200 {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(received.Number, "PL-") || len(received.Number) != 11 {
		t.Errorf("minted number = %q, want PL- prefix with 8-char suffix", received.Number)
	}
	if len(received.PickupIDs) != 2 {
		t.Errorf("pickup ids not forwarded: %v", received.PickupIDs)
	}
}

func TestCreatePickListRequiresPickups(t *testing.T) {
	u := testutil.NewUpstream(t)
	h := New(&server.App{Gateway: gateway.New(u.URL)})

	w := httptest.NewRecorder()
	h.CreatePickList(w, httptest.NewRequest("POST", "/api/v1/picklists",
		strings.NewReader(`{"staff_id":"s1","pickup_ids":[]}`)))

	if w.Code != 422 {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "pickup_ids") {
		t.Errorf("missing pickup_ids error: %s", w.Body.String())
	}
}
