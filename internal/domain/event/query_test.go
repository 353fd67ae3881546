package event

import (
	"math"
	"testing"
	"time"
)

func TestListParamsNormalize_Defaults(t *testing.T) {
	q := ListParams{}.Normalize()

	if q.Sort != SortByDate || q.Order != OrderAsc {
		t.Fatalf("got sort=%q order=%q, want date asc", q.Sort, q.Order)
	}
	if q.Page != 1 || q.PageSize != 5 {
		t.Fatalf("got page=%d pageSize=%d, want 1 and 5", q.Page, q.PageSize)
	}
	if q.Status != StatusAny || q.From != nil || q.To != nil || q.Query != "" {
		t.Fatalf("expected no filters, got %+v", q)
	}
}

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		name   string
		params ListParams
		check  func(t *testing.T, q ListQuery)
	}{
		{
			name:   "unknown_sort_falls_back_to_date",
			params: ListParams{Sort: "capacity"},
			check: func(t *testing.T, q ListQuery) {
				if q.Sort != SortByDate {
					t.Fatalf("got %q", q.Sort)
				}
			},
		},
		{
			name:   "created_at_sort_kept",
			params: ListParams{Sort: "createdAt"},
			check: func(t *testing.T, q ListQuery) {
				if q.Sort != SortByCreatedAt {
					t.Fatalf("got %q", q.Sort)
				}
			},
		},
		{
			name:   "order_is_case_insensitive",
			params: ListParams{Order: "DESC"},
			check: func(t *testing.T, q ListQuery) {
				if q.Order != OrderDesc {
					t.Fatalf("got %q", q.Order)
				}
			},
		},
		{
			name:   "unknown_order_is_ascending",
			params: ListParams{Order: "sideways"},
			check: func(t *testing.T, q ListQuery) {
				if q.Order != OrderAsc {
					t.Fatalf("got %q", q.Order)
				}
			},
		},
		{
			name:   "unknown_status_means_no_filter",
			params: ListParams{Status: "archived"},
			check: func(t *testing.T, q ListQuery) {
				if q.Status != StatusAny {
					t.Fatalf("got %q", q.Status)
				}
			},
		},
		{
			name:   "page_size_clamped_high",
			params: ListParams{PageSize: "500"},
			check: func(t *testing.T, q ListQuery) {
				if q.PageSize != MaxPageSize {
					t.Fatalf("got %d", q.PageSize)
				}
			},
		},
		{
			name:   "page_size_clamped_low",
			params: ListParams{PageSize: "0"},
			check: func(t *testing.T, q ListQuery) {
				if q.PageSize != 1 {
					t.Fatalf("got %d", q.PageSize)
				}
			},
		},
		{
			name:   "page_size_non_numeric_defaults",
			params: ListParams{PageSize: "lots"},
			check: func(t *testing.T, q ListQuery) {
				if q.PageSize != DefaultPageSize {
					t.Fatalf("got %d", q.PageSize)
				}
			},
		},
		{
			name:   "non_positive_page_coerced",
			params: ListParams{Page: "-4"},
			check: func(t *testing.T, q ListQuery) {
				if q.Page != 1 {
					t.Fatalf("got %d", q.Page)
				}
			},
		},
		{
			name:   "offset_from_page",
			params: ListParams{Page: "3", PageSize: "10"},
			check: func(t *testing.T, q ListQuery) {
				if q.Offset() != 20 || q.Limit() != 10 {
					t.Fatalf("got offset=%d limit=%d", q.Offset(), q.Limit())
				}
			},
		},
		{
			name:   "huge_page_kept_and_offset_saturates",
			params: ListParams{Page: "9223372036854775807", PageSize: "50"},
			check: func(t *testing.T, q ListQuery) {
				if q.Page != math.MaxInt {
					t.Fatalf("got page %d", q.Page)
				}
				if q.Offset() != math.MaxInt {
					t.Fatalf("got offset %d, want saturation", q.Offset())
				}
			},
		},
		{
			name:   "q_kept_as_sent",
			params: ListParams{Q: "  "},
			check: func(t *testing.T, q ListQuery) {
				if q.Query != "  " {
					t.Fatalf("got %q", q.Query)
				}
			},
		},
		{
			name:   "date_range_parsed",
			params: ListParams{From: "2030-01-01", To: "2030-02-01T10:00:00+02:00"},
			check: func(t *testing.T, q ListQuery) {
				if q.From == nil || !q.From.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
					t.Fatalf("bad from: %v", q.From)
				}
				if q.To == nil || !q.To.Equal(time.Date(2030, 2, 1, 8, 0, 0, 0, time.UTC)) {
					t.Fatalf("bad to: %v", q.To)
				}
			},
		},
		{
			name:   "invalid_date_range_ignored",
			params: ListParams{From: "yesterday-ish"},
			check: func(t *testing.T, q ListQuery) {
				if q.From != nil {
					t.Fatalf("expected from to be ignored, got %v", q.From)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.params.Normalize())
		})
	}
}
