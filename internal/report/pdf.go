// Package report turns a finalized (already filtered) row set into a
// downloadable document: a paginated PDF, or CSV/XLSX tables.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Options controls the PDF header sections.
type Options struct {
	Title       string
	GeneratedAt time.Time
	// Filters lists the applied filters. Entries with an empty or "all"
	// value are omitted from the document.
	Filters map[string]string
}

// Column is one table column with a fixed width in millimeters.
type Column struct {
	Header string
	Width  float64
}

// CategoryCount is one line of the summary breakdown.
type CategoryCount struct {
	Label string
	Count int
}

// Summary is the block printed between the title and the table.
type Summary struct {
	Total   int
	ByLabel string
	Counts  []CategoryCount
}

// SummarizeBy builds an ordered per-category breakdown (first-appearance
// order) from one categorical value per row.
func SummarizeBy(label string, values []string) Summary {
	sum := Summary{Total: len(values), ByLabel: label}
	index := map[string]int{}
	for _, v := range values {
		if v == "" {
			v = "unknown"
		}
		if i, ok := index[v]; ok {
			sum.Counts[i].Count++
			continue
		}
		index[v] = len(sum.Counts)
		sum.Counts = append(sum.Counts, CategoryCount{Label: v, Count: 1})
	}
	return sum
}

const (
	pageBottom   = 270.0 // mm; cursor past this starts a new page
	rowHeight    = 6.0
	headerHeight = 7.0
)

// BuildPDF lays out the document in fixed order: title, generation
// timestamp, summary, applied filters, then the table. The table header is
// redrawn after every page break and each page gets a centered
// "Page X of Y" footer. Layout panics are recovered into a single generic
// error; nothing is written to w unless the whole document built cleanly.
func BuildPDF(w io.Writer, opts Options, sum Summary, cols []Column, rows [][]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("failed to generate PDF")
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, opts.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, "Generated "+opts.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d", sum.Total), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, c := range sum.Counts {
		pdf.CellFormat(0, 5, fmt.Sprintf("%s %s: %d", c.Label, sum.ByLabel, c.Count), "", 1, "L", false, 0, "")
	}

	if applied := appliedFilters(opts.Filters); len(applied) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Applied Filters", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, line := range applied {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range cols {
			pdf.CellFormat(col.Width, headerHeight, col.Header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	drawHeader()
	for _, row := range rows {
		if pdf.GetY() > pageBottom-rowHeight {
			pdf.AddPage()
			drawHeader()
		}
		for i, col := range cols {
			cell := ""
			if i < len(row) {
				cell = Truncate(row[i], col.Width)
			}
			pdf.CellFormat(col.Width, rowHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return errors.New("failed to generate PDF")
	}
	if outErr := pdf.Output(w); outErr != nil {
		return errors.New("failed to generate PDF")
	}
	return nil
}

// Truncate cuts a cell value to a character budget derived strictly from
// the column width, suffixing an ellipsis. It is not content-aware. The cut
// falls on a rune boundary so multi-byte values stay valid UTF-8.
func Truncate(s string, width float64) string {
	budget := int(width / 1.9)
	if budget < 4 {
		budget = 4
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget-3]) + "..."
}

// Filename is the download name convention: <report-type>-<ISO date>.pdf.
func Filename(reportType string, t time.Time) string {
	return fmt.Sprintf("%s-%s.pdf", reportType, t.Format("2006-01-02"))
}

func appliedFilters(filters map[string]string) []string {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" || v == "all" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %s", k, filters[k])
	}
	return lines
}
