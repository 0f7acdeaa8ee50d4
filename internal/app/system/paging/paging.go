// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows shown when no limit is requested.
const DefaultPageSize = 10

// PageSizes are the page sizes offered in the page-size selector.
var PageSizes = []int{10, 25, 50, 100}

// Ellipsis marks a gap in the pagination window.
const Ellipsis = "..."

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseLimit extracts the "limit" query parameter. Only values listed in
// PageSizes are accepted; anything else yields def.
func ParseLimit(r *http.Request, def int) int {
	if !Allowed(def) {
		def = DefaultPageSize
	}
	s := query.Get(r, "limit")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Allowed(n) {
		return def
	}
	return n
}

// Allowed reports whether n is one of PageSizes.
func Allowed(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// TotalPages returns ceil(total/size). A non-positive size yields 0.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Clamp keeps page within [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Range holds the 1-based rows shown on a page.
type Range struct {
	Start int // 0 if no results
	End   int // 0 if no results
}

// RowRange returns [(page-1)*size+1, min(page*size, total)].
func RowRange(page, size, total int) Range {
	if total <= 0 || size <= 0 || page < 1 {
		return Range{}
	}
	start := (page-1)*size + 1
	if start > total {
		return Range{}
	}
	end := page * size
	if end > total {
		end = total
	}
	return Range{Start: start, End: end}
}

// Slice returns the rows of items that belong on page.
func Slice[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
