package pagination

import (
	"strconv"
	"strings"
)

// PageSize is the fixed number of rows per admin list page.
const PageSize = 20

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Params holds offset pagination and sorting inputs from controllers.
type Params struct {
	Page      int
	SortBy    string
	SortOrder SortOrder
}

// Page is the list envelope returned by catalog queries.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NormalizePage clamps a requested page to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ParsePage reads a page query value, defaulting to 1 on blank or invalid input.
func ParsePage(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return NormalizePage(value)
}

// Offset returns the row offset for page.
func Offset(page int) int {
	return (NormalizePage(page) - 1) * PageSize
}

// ParseSortOrder defaults to descending unless "asc" is requested.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// SQL renders the direction keyword.
func (o SortOrder) SQL() string {
	if o == SortAsc {
		return "ASC"
	}
	return "DESC"
}

// NewPage wraps a result slice with its totals. A nil slice is rendered as [].
func NewPage[T any](data []T, total int64, page int) Page[T] {
	if data == nil {
		data = []T{}
	}
	page = NormalizePage(page)
	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: int((total + PageSize - 1) / PageSize),
	}
}

// Empty returns a zero-row page.
func Empty[T any](page int) Page[T] {
	return NewPage[T](nil, 0, page)
}
