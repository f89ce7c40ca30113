package shared

import (
	"math"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// DefaultPerPage is used when neither the request nor the config sets a page size.
const DefaultPerPage = 15

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is clamped into [1, TotalPages].
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	p := Pagination{PerPage: perPage, Total: total, TotalPages: totalPages}
	p.Page = p.Clamp(page)
	return p
}

// PaginationFromMeta converts backend list metadata. The backend's last_page is
// trusted over a recomputation.
func PaginationFromMeta(meta api.Meta) Pagination {
	p := NewPagination(meta.CurrentPage, meta.PerPage, meta.Total)
	if meta.Total > 0 && meta.LastPage > 0 {
		p.TotalPages = meta.LastPage
		p.Page = p.Clamp(meta.CurrentPage)
	}
	return p
}

// Clamp keeps page inside the valid range. An empty listing has a single page.
func (p Pagination) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if p.TotalPages < 1 {
		return 1
	}
	if page > p.TotalPages {
		return p.TotalPages
	}
	return page
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number, clamped.
func (p Pagination) Prev() int { return p.Clamp(p.Page - 1) }

// Next returns the next page number, clamped.
func (p Pagination) Next() int { return p.Clamp(p.Page + 1) }

// From is the 1-based index of the first row shown.
func (p Pagination) From() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the 1-based index of the last row shown.
func (p Pagination) To() int {
	to := p.Page * p.PerPage
	if to > p.Total {
		return p.Total
	}
	return to
}

// Pages lists page numbers around the current page, at most 2*radius+1 of them.
func (p Pagination) Pages(radius int) []int {
	if p.TotalPages <= 1 {
		return []int{1}
	}
	start := p.Page - radius
	end := p.Page + radius
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > p.TotalPages {
		start -= end - p.TotalPages
		end = p.TotalPages
	}
	if start < 1 {
		start = 1
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
