package listutil

import (
	"net/url"
	"testing"
)

// TestParseSortParams verifies allowed keys pass and others fall back.
func TestParseSortParams(t *testing.T) {
	allowed := []string{"name", "members"}
	tests := []struct {
		raw  string
		want string
	}{
		{"name", "name"},
		{" Members ", "members"},
		{"email", "default"},
		{"", "default"},
	}
	for _, tt := range tests {
		s := ParseSortParams(url.Values{"sort": {tt.raw}}, allowed, "default")
		if s.Sort != tt.want {
			t.Errorf("sort %q: got %q, want %q", tt.raw, s.Sort, tt.want)
		}
	}
}

// TestParseFilterParams verifies correct parsing of search and filter values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {" oran "}, "size": {"3v3"}, "unknown": {"x"}}
	fp := ParseFilterParams(q, []string{"size"})
	if fp.Search != "oran" {
		t.Errorf("expected search=oran, got %q", fp.Search)
	}
	if fp.Filters["size"] != "3v3" {
		t.Errorf("expected filter size=3v3, got %s", fp.Filters["size"])
	}
	if _, ok := fp.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown' should not be present")
	}
}

// TestParseListParams verifies the combined parse.
func TestParseListParams(t *testing.T) {
	lp := ParseListParams(url.Values{"q": {"tig"}, "sort": {"name"}}, []string{"name"}, "default", []string{"size"})
	if lp.Search != "tig" || lp.Sort != "name" || len(lp.Filters) != 0 {
		t.Errorf("got %+v", lp)
	}
}

// TestParseTop verifies leaderboard sizes.
func TestParseTop(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultTop},
		{"all", 0},
		{"0", 0},
		{"25", 25},
		{"7", 7},
		{"-3", DefaultTop},
		{"ten", DefaultTop},
		{"999999", MaxTop},
	}
	for _, tt := range tests {
		if got := ParseTop(url.Values{"top": {tt.raw}}); got != tt.want {
			t.Errorf("top %q: got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

// TestParseWeeks verifies the traffic window.
func TestParseWeeks(t *testing.T) {
	if w, all := ParseWeeks(url.Values{"weeks": {"all"}}); w != 0 || !all {
		t.Errorf("all: got %d %v", w, all)
	}
	if w, all := ParseWeeks(url.Values{"weeks": {"4"}}); w != 4 || all {
		t.Errorf("4: got %d %v", w, all)
	}
	if w, all := ParseWeeks(url.Values{}); w != 0 || all {
		t.Errorf("missing: got %d %v", w, all)
	}
	if w, _ := ParseWeeks(url.Values{"weeks": {"100000"}}); w != MaxWeeks {
		t.Errorf("clamp: got %d", w)
	}
}
