package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

var testCols = []Column{
	{Header: "Order", Width: 40},
	{Header: "Dealer", Width: 70},
	{Header: "Status", Width: 30},
	{Header: "Minutes", Width: 25},
}

func TestEmptySetStillProducesValidDocument(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Title: "SLA Violations Report", GeneratedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}

	err := BuildPDF(&buf, opts, SummarizeBy("status", nil), testCols, nil)
	if err != nil {
		t.Fatalf("BuildPDF on empty set: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
	if buf.Len() < 500 {
		t.Errorf("document suspiciously small: %d bytes", buf.Len())
	}
}

func TestManyRowsSpanPages(t *testing.T) {
	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("ORD-%04d", i), "Acme Traders Pvt Ltd", "open", "45"}
	}

	var buf bytes.Buffer
	err := BuildPDF(&buf, Options{Title: "Orders", GeneratedAt: time.Now()},
		Summary{Total: len(rows)}, testCols, rows)
	if err != nil {
		t.Fatalf("BuildPDF: %v", err)
	}
	// 120 rows at ~40 per page must paginate; gofpdf emits one /Page object
	// per rendered page.
	if got := bytes.Count(buf.Bytes(), []byte("/Type /Page")); got < 3 {
		t.Errorf("expected a multi-page document, found %d page markers", got)
	}
}

func TestSummarizeBy(t *testing.T) {
	sum := SummarizeBy("status", []string{"open", "closed", "open", "", "open"})
	if sum.Total != 5 {
		t.Errorf("Total = %d", sum.Total)
	}
	want := []CategoryCount{{"open", 3}, {"closed", 1}, {"unknown", 1}}
	if len(sum.Counts) != len(want) {
		t.Fatalf("Counts = %+v", sum.Counts)
	}
	for i, c := range want {
		if sum.Counts[i] != c {
			t.Errorf("Counts[%d] = %+v, want %+v", i, sum.Counts[i], c)
		}
	}
}

func TestTruncateIsWidthDerived(t *testing.T) {
	long := strings.Repeat("x", 200)

	a := Truncate(long, 40)
	b := Truncate(long, 40)
	if a != b {
		t.Error("truncation is not deterministic")
	}
	if !strings.HasSuffix(a, "...") {
		t.Errorf("no ellipsis suffix: %q", a)
	}
	if len(Truncate(long, 80)) <= len(a) {
		t.Error("wider column should keep more characters")
	}
	if short := Truncate("ok", 40); short != "ok" {
		t.Errorf("short value altered: %q", short)
	}
}

func TestTruncateKeepsMultiByteValuesValid(t *testing.T) {
	long := strings.Repeat("श्री ऑटो पार्ट्स ", 20)

	width := 40.0
	got := Truncate(long, width)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("no ellipsis suffix: %q", got)
	}
	if utf8.RuneCountInString(got) != int(width/1.9) {
		t.Errorf("rune budget not honored: %d runes", utf8.RuneCountInString(got))
	}
}

func TestAppliedFiltersSkipSentinels(t *testing.T) {
	lines := appliedFilters(map[string]string{
		"status": "closed",
		"range":  "all",
		"staff":  "",
	})
	if len(lines) != 1 || lines[0] != "status: closed" {
		t.Errorf("appliedFilters = %v", lines)
	}
}

func TestFilename(t *testing.T) {
	got := Filename("sla-violations", time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC))
	if got != "sla-violations-2026-08-30.pdf" {
		t.Errorf("Filename = %q", got)
	}
}
