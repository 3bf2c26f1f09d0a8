package pipeline

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"
)

type row struct {
	ID        string
	LegalName string
	Status    string
	Amount    float64
	CreatedAt time.Time
}

func testConfig() Config[row] {
	return Config[row]{
		SearchFields: []func(row) string{
			func(r row) string { return r.ID },
			func(r row) string { return r.LegalName },
		},
		SortFields: map[string]func(row) interface{}{
			"legal_name": func(r row) interface{} { return r.LegalName },
			"amount":     func(r row) interface{} { return r.Amount },
			"created_at": func(r row) interface{} { return r.CreatedAt },
		},
		FilterFields: map[string]func(row, string) bool{
			"status": func(r row, v string) bool { return r.Status == v },
			"range": func(r row, v string) bool {
				return InRange(r.CreatedAt, v, time.Now())
			},
		},
	}
}

func TestSearchMatchesConfiguredFields(t *testing.T) {
	rows := []row{
		{ID: "1", LegalName: "Acme Traders"},
		{ID: "2", LegalName: "Other Co"},
		{ID: "3", LegalName: "ACME SPARES"},
	}

	res := Apply(rows, NewState().WithSearch("acme"), testConfig())
	if res.TotalItems != 2 {
		t.Fatalf("TotalItems = %d, want 2", res.TotalItems)
	}
	for _, r := range res.Items {
		if !strings.Contains(strings.ToLower(r.LegalName), "acme") {
			t.Errorf("row %q does not match search", r.LegalName)
		}
	}
}

func TestSearchNeverMatchesUnconfiguredFields(t *testing.T) {
	rows := []row{{ID: "1", LegalName: "Acme", Status: "pending"}}
	res := Apply(rows, NewState().WithSearch("pending"), testConfig())
	if res.TotalItems != 0 {
		t.Errorf("status is not a searchable field, got %d matches", res.TotalItems)
	}
}

func TestSortReversesAndStaysStable(t *testing.T) {
	rows := []row{
		{ID: "a", Amount: 3},
		{ID: "b", Amount: 1},
		{ID: "c", Amount: 1},
		{ID: "d", Amount: 2},
	}
	cfg := testConfig()

	asc := Apply(rows, State{SortBy: "amount", SortOrder: Asc, Page: 1}, cfg)
	desc := Apply(rows, State{SortBy: "amount", SortOrder: Desc, Page: 1}, cfg)

	ids := func(res Result[row]) []string {
		out := make([]string, len(res.Items))
		for i, r := range res.Items {
			out[i] = r.ID
		}
		return out
	}

	if got := ids(asc); !reflect.DeepEqual(got, []string{"b", "c", "d", "a"}) {
		t.Errorf("asc order = %v", got)
	}
	// Ties (b, c) keep their original relative order in both directions.
	if got := ids(desc); !reflect.DeepEqual(got, []string{"a", "d", "b", "c"}) {
		t.Errorf("desc order = %v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	rows := make([]row, 37)
	for i := range rows {
		rows[i] = row{ID: fmt.Sprintf("r%02d", i), Amount: float64(i % 7), Status: "open"}
	}
	st := State{Search: "r", SortBy: "amount", SortOrder: Desc, Page: 2, Filters: map[string]string{"status": "open"}}

	first := Apply(rows, st, testConfig())
	second := Apply(rows, st, testConfig())
	if !reflect.DeepEqual(first, second) {
		t.Error("two applications of identical state differ")
	}
}

func TestPaginationInvariants(t *testing.T) {
	rows := make([]row, 25)
	for i := range rows {
		rows[i] = row{ID: fmt.Sprintf("r%d", i)}
	}
	cfg := testConfig()

	res := Apply(rows, NewState(), cfg)
	if res.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", res.TotalPages)
	}

	seen := 0
	for page := 1; page <= res.TotalPages; page++ {
		pr := Apply(rows, NewState().WithPage(page), cfg)
		if len(pr.Items) > PageSize {
			t.Errorf("page %d has %d items", page, len(pr.Items))
		}
		if page < pr.TotalPages && len(pr.Items) != PageSize {
			t.Errorf("non-final page %d has %d items", page, len(pr.Items))
		}
		seen += len(pr.Items)
	}
	if seen != 25 {
		t.Errorf("sum of page lengths = %d, want 25", seen)
	}

	last := Apply(rows, NewState().WithPage(3), cfg)
	if len(last.Items) != 5 {
		t.Errorf("page 3 has %d items, want 5", len(last.Items))
	}
}

func TestPageClampsToLastPage(t *testing.T) {
	rows := []row{{ID: "1"}, {ID: "2"}}
	res := Apply(rows, NewState().WithPage(99), testConfig())
	if res.CurrentPage != 1 || len(res.Items) != 2 {
		t.Errorf("clamp failed: page=%d items=%d", res.CurrentPage, len(res.Items))
	}
}

func TestStateTransitions(t *testing.T) {
	st := NewState().WithPage(4)

	if got := st.WithSearch("brake pad"); got.Page != 1 {
		t.Errorf("search edit kept page %d", got.Page)
	}
	if got := st.WithFilter("status", "closed"); got.Page != 1 {
		t.Errorf("filter edit kept page %d", got.Page)
	}

	sorted := st.WithSort("legal_name")
	if sorted.Page != 4 {
		t.Errorf("sort change reset page to %d", sorted.Page)
	}
	if sorted.SortOrder != Asc {
		t.Errorf("new sort column should default ascending, got %s", sorted.SortOrder)
	}
	toggled := sorted.WithSort("legal_name")
	if toggled.SortOrder != Desc {
		t.Errorf("re-click should toggle to desc, got %s", toggled.SortOrder)
	}

	// Sort must survive a filter change.
	filtered := toggled.WithFilter("status", "open")
	if filtered.SortBy != "legal_name" || filtered.SortOrder != Desc {
		t.Error("filter change dropped sort state")
	}
}

func TestStatusFilter(t *testing.T) {
	rows := []row{
		{ID: "1", Status: "pending", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Status: "closed", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	res := Apply(rows, NewState().WithFilter("status", "closed"), testConfig())
	if res.TotalItems != 1 || res.Items[0].ID != "2" {
		t.Fatalf("want exactly the closed row, got %+v", res.Items)
	}
}

func TestFilterValueAllPassesEverything(t *testing.T) {
	rows := []row{{ID: "1", Status: "open"}, {ID: "2", Status: "closed"}}
	res := Apply(rows, NewState().WithFilter("status", "all"), testConfig())
	if res.TotalItems != 2 {
		t.Errorf("sentinel \"all\" filtered rows: %d", res.TotalItems)
	}
}

func TestInRangeBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		ts   time.Time
		key  string
		want bool
	}{
		{now.Add(-2 * time.Hour), "today", true},
		{now.AddDate(0, 0, -1), "today", false},
		{now.AddDate(0, 0, -6), "week", true},
		{now.AddDate(0, 0, -8), "week", false},
		{now.AddDate(0, 0, -29), "month", true},
		{now.AddDate(0, 0, -31), "month", false},
		{now.AddDate(0, 0, -365), "fortnight", true}, // unknown key passes
	}
	for _, tt := range tests {
		if got := InRange(tt.ts, tt.key, now); got != tt.want {
			t.Errorf("InRange(%v, %q) = %v, want %v", tt.ts, tt.key, got, tt.want)
		}
	}
}

func TestSortHandlesNilValues(t *testing.T) {
	cfg := testConfig()
	cfg.SortFields["maybe"] = func(r row) interface{} {
		if r.ID == "nil" {
			return nil
		}
		return r.LegalName
	}
	rows := []row{
		{ID: "nil"},
		{ID: "1", LegalName: "Beta"},
		{ID: "2", LegalName: "alpha"},
	}
	res := Apply(rows, State{SortBy: "maybe", SortOrder: Asc, Page: 1}, cfg)
	if res.Items[0].ID != "nil" {
		t.Errorf("nil value should sort as empty string, order: %+v", res.Items)
	}
	if res.Items[1].ID != "2" {
		t.Error("string compare should be case-insensitive")
	}
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("search", "oil filter")
	q.Set("sort_by", "created_at")
	q.Set("sort_order", "desc")
	q.Set("page", "3")
	q.Set("status", "open")
	q.Set("bogus", "x")

	st := FromQuery(q, "status", "range")
	if st.Search != "oil filter" || st.SortBy != "created_at" || st.SortOrder != Desc || st.Page != 3 {
		t.Errorf("bad state: %+v", st)
	}
	if st.Filters["status"] != "open" {
		t.Error("status filter not captured")
	}
	if _, ok := st.Filters["bogus"]; ok {
		t.Error("unlisted filter key captured")
	}
}
