// Package listutil parses the query parameters shared by list pages:
// search, filters, sort keys, leaderboard size and traffic window.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// SortParams carries a validated sort key.
type SortParams struct {
	Sort string // one of the allowed keys, or the fallback
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string            // free-text search query
	Filters map[string]string // exact-match filters (e.g. size=3v3)
}

// ListParams combines all list view parameters.
type ListParams struct {
	SortParams
	FilterParams
}

// DefaultTop is the leaderboard size when none is requested.
const DefaultTop = 10

// MaxTop bounds explicit leaderboard sizes.
const MaxTop = 1000

// MaxWeeks bounds the traffic window.
const MaxWeeks = 520

// ParseSortParams extracts sort from URL query values.
// PRE: fallback is the key used when sort is missing or not allowed
// POST: returns SortParams whose Sort is fallback or in allowed
func ParseSortParams(q url.Values, allowed []string, fallback string) SortParams {
	sort := strings.ToLower(strings.TrimSpace(q.Get("sort")))
	if !isAllowed(sort, allowed) {
		sort = fallback
	}
	return SortParams{Sort: sort}
}

// ParseFilterParams extracts search and named filters from URL query values.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, allowedSorts []string, fallbackSort string, filterKeys []string) ListParams {
	return ListParams{
		SortParams:   ParseSortParams(q, allowedSorts, fallbackSort),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// ParseTop reads the leaderboard size. "all" and "0" mean every row; a
// missing or malformed value gives DefaultTop.
// POST: 0 <= result <= MaxTop
func ParseTop(q url.Values) int {
	raw := strings.ToLower(strings.TrimSpace(q.Get("top")))
	switch raw {
	case "":
		return DefaultTop
	case "all", "0":
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return DefaultTop
	}
	if n > MaxTop {
		n = MaxTop
	}
	return n
}

// ParseWeeks reads the traffic window. weeks=all asks for all time; other
// invalid values give 0 so the caller's default applies.
func ParseWeeks(q url.Values) (weeks int, allTime bool) {
	raw := strings.ToLower(strings.TrimSpace(q.Get("weeks")))
	if raw == "all" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	if n > MaxWeeks {
		n = MaxWeeks
	}
	return n, false
}

func isAllowed(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
