// Package paging splits an in-memory collection into fixed-size pages.
// There is no server-side pagination: the whole collection is fetched and
// paged here.
package paging

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 10

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page, 1-indexed
	PerPage    int
	Total      int
	TotalPages int // ceil(Total / PerPage), at least 1
}

// ParsePage reads the 1-indexed "page" query parameter, defaulting to 1.
func ParsePage(q url.Values) int {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// NewPageInfo computes pagination metadata. page is clamped into
// [1, TotalPages].
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first item on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row on the page, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row on the page.
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

func (p PageInfo) HasPrev() bool { return p.Page > 1 }
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }
func (p PageInfo) Prev() int     { return p.Page - 1 }
func (p PageInfo) Next() int     { return p.Page + 1 }

// ShowPagination reports whether there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// PageNumbers returns at most five page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Paginate returns the items on the page described by info together with
// the info recomputed for len(items).
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	info := NewPageInfo(page, perPage, len(items))
	start := info.Offset()
	end := info.EndRow()
	if start >= end {
		return []T{}, info
	}
	return items[start:end], info
}
