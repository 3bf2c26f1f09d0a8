// Package pipeline derives the visible slice of a list screen from raw
// upstream rows plus the screen's filter state: search, then categorical
// filters, then a stable sort, then fixed-size pagination.
//
// Every list screen shares this one implementation, parameterized by field
// accessors, so the screens cannot drift apart in semantics. The derivation
// is pure and never fails: malformed or missing fields coerce to zero values
// instead of erroring.
package pipeline

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PageSize is the fixed page length used by every screen.
const PageSize = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is a screen's current view parameters.
type State struct {
	Search    string
	SortBy    string
	SortOrder Direction
	Page      int
	Filters   map[string]string
}

// NewState returns the default state a screen mounts with.
func NewState() State {
	return State{SortOrder: Asc, Page: 1, Filters: map[string]string{}}
}

// WithSearch returns the state after a search edit. The page resets to 1
// because the filtered set's composition changes.
func (s State) WithSearch(q string) State {
	s.Search = q
	s.Page = 1
	return s
}

// WithFilter returns the state after a categorical filter change; the page
// resets to 1. Sort is preserved across filter changes.
func (s State) WithFilter(key, value string) State {
	filters := make(map[string]string, len(s.Filters)+1)
	for k, v := range s.Filters {
		filters[k] = v
	}
	filters[key] = value
	s.Filters = filters
	s.Page = 1
	return s
}

// WithSort returns the state after a column-header click: clicking the
// current sort column toggles direction, clicking a new column sorts it
// ascending. Sort-only changes keep the current page.
func (s State) WithSort(field string) State {
	if s.SortBy == field {
		if s.SortOrder == Asc {
			s.SortOrder = Desc
		} else {
			s.SortOrder = Asc
		}
	} else {
		s.SortBy = field
		s.SortOrder = Asc
	}
	return s
}

func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// FromQuery builds a State from list-endpoint query parameters. filterKeys
// names the categorical params the screen understands; anything else is
// ignored.
func FromQuery(q url.Values, filterKeys ...string) State {
	s := NewState()
	s.Search = q.Get("search")
	s.SortBy = q.Get("sort_by")
	if q.Get("sort_order") == string(Desc) {
		s.SortOrder = Desc
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		s.Page = p
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			s.Filters[key] = v
		}
	}
	return s
}

// Config wires a row type into the pipeline.
type Config[T any] struct {
	// SearchFields are the string fields matched by the search term.
	SearchFields []func(T) string
	// SortFields maps a sortable column name to its value accessor.
	// Accessors may return string, int, int64, float64 or time.Time.
	SortFields map[string]func(T) interface{}
	// FilterFields maps a categorical filter key to its predicate.
	FilterFields map[string]func(T, string) bool
}

// Result is the derived page. It is never stored; callers recompute it from
// the raw rows and state so the two cannot drift.
type Result[T any] struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Items       []T `json:"items"`
}

// Apply runs the full derivation: search, categorical filters, stable sort,
// pagination. The input slice is not modified.
func Apply[T any](rows []T, st State, cfg Config[T]) Result[T] {
	filtered := Filter(rows, st, cfg)

	if st.SortBy != "" {
		if accessor, ok := cfg.SortFields[st.SortBy]; ok {
			sort.SliceStable(filtered, func(i, j int) bool {
				if st.SortOrder == Desc {
					return less(accessor(filtered[j]), accessor(filtered[i]))
				}
				return less(accessor(filtered[i]), accessor(filtered[j]))
			})
		}
	}

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	page := st.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result[T]{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Items:       filtered[start:end],
	}
}

// Filter returns the rows passing the search term and every active
// categorical filter, in their original order. Export flows use this to get
// the full filtered set without pagination.
func Filter[T any](rows []T, st State, cfg Config[T]) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if !MatchesSearch(row, st.Search, cfg.SearchFields) {
			continue
		}
		if !matchesFilters(row, st.Filters, cfg.FilterFields) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// MatchesSearch reports whether any of the row's searchable fields contains
// the term, case-insensitively. An empty term matches everything.
func MatchesSearch[T any](row T, term string, fields []func(T) string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(row)), term) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](row T, filters map[string]string, preds map[string]func(T, string) bool) bool {
	for key, value := range filters {
		if value == "" || value == "all" {
			continue
		}
		pred, ok := preds[key]
		if !ok {
			// Unrecognized filter keys pass all rows through.
			continue
		}
		if !pred(row, value) {
			return false
		}
	}
	return true
}

// InRange buckets a row timestamp against a date-range filter value:
// "today" is since local midnight, "week" the trailing 7 days, "month" the
// trailing 30 days. Unrecognized keys match every row.
func InRange(ts time.Time, key string, now time.Time) bool {
	switch key {
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return !ts.Before(start)
	case "week":
		return !ts.Before(now.AddDate(0, 0, -7))
	case "month":
		return !ts.Before(now.AddDate(0, 0, -30))
	default:
		return true
	}
}

// less orders two sort values. Strings compare case-insensitively, numeric
// types by magnitude, times chronologically. A nil value normalizes to the
// zero of the other side's type so mixed rows never panic.
func less(a, b interface{}) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil {
		a = zeroLike(b)
	}
	if b == nil {
		b = zeroLike(a)
	}

	switch av := a.(type) {
	case string:
		return strings.ToLower(av) < strings.ToLower(asString(b))
	case int, int64, float64:
		return asFloat(a) < asFloat(b)
	case time.Time:
		bt, ok := b.(time.Time)
		if !ok {
			return false
		}
		return av.Before(bt)
	default:
		return asString(a) < asString(b)
	}
}

func zeroLike(v interface{}) interface{} {
	switch v.(type) {
	case int, int64, float64:
		return float64(0)
	case time.Time:
		return time.Time{}
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case nil:
		return ""
	default:
		return strings.ToLower(fmt.Sprint(v))
	}
}
