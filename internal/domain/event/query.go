package event

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type SortField string

const (
	SortByDate      SortField = "date"
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "createdAt"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

type StatusFilter string

const (
	StatusAny       StatusFilter = ""
	StatusActive    StatusFilter = "active"
	StatusCancelled StatusFilter = "cancelled"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 50
)

// ListParams is the raw query string of GET /events, bound as-is.
type ListParams struct {
	Sort     string `form:"sort"`
	Order    string `form:"order"`
	Q        string `form:"q"`
	Status   string `form:"status"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     string `form:"page"`
	PageSize string `form:"pageSize"`
}

// ListQuery is the normalized listing request. Optional filters are nil/empty when absent.
type ListQuery struct {
	Sort     SortField
	Order    SortOrder
	Query    string
	Status   StatusFilter
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type ListResult struct {
	Items    []Event `json:"items"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// Normalize never fails: unknown or malformed values fall back to their defaults.
func (p ListParams) Normalize() ListQuery {
	q := ListQuery{
		Sort:     SortByDate,
		Order:    OrderAsc,
		Query:    p.Q,
		Status:   StatusAny,
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	switch SortField(p.Sort) {
	case SortByDate, SortByName, SortByCreatedAt:
		q.Sort = SortField(p.Sort)
	}

	if strings.EqualFold(strings.TrimSpace(p.Order), string(OrderDesc)) {
		q.Order = OrderDesc
	}

	switch StatusFilter(p.Status) {
	case StatusActive, StatusCancelled:
		q.Status = StatusFilter(p.Status)
	}

	if t, err := ParseTimestamp(p.From); err == nil {
		q.From = &t
	}

	if t, err := ParseTimestamp(p.To); err == nil {
		q.To = &t
	}

	if n, err := strconv.Atoi(strings.TrimSpace(p.Page)); err == nil && n > 1 {
		q.Page = n
	}

	if n, err := strconv.Atoi(strings.TrimSpace(p.PageSize)); err == nil {
		q.PageSize = min(max(n, 1), MaxPageSize)
	}

	return q
}

func (q ListQuery) Limit() int {
	return q.PageSize
}

// Offset saturates at math.MaxInt, so a page far past the end reads as empty
// rather than wrapping around.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}
