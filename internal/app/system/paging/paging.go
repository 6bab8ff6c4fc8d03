// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a paged list.
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 200

// MaxPage caps the "page" query parameter so Offset cannot overflow for
// any page size up to MaxPageSize.
const MaxPage = math.MaxInt/MaxPageSize + 1

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Parse reads the "page" and "limit" query parameters. Missing or invalid
// values fall back to page 1 and PageSize; limit is clamped to MaxPageSize
// and page to MaxPage. Pages past the data come back empty.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Size: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = min(n, MaxPage)
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Size = min(n, MaxPageSize)
	}
	return p
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

// Limit is the page size as int64 for Mongo Find().SetLimit().
func (p Page) Limit() int64 { return int64(p.Size) }

// Meta describes where a page sits in the full result.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

// NewMeta computes page indicators for total matching rows.
func NewMeta(p Page, total int64) Meta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Meta{
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Number > 1,
		HasNext:    p.Number < pages,
	}
}
