package domain

import "math"

// MaxPageNumber bounds the page a client may ask for.
const MaxPageNumber = 100000

// Page describes an offset based page request.
type Page struct {
	Number  int `json:"page"`
	PerPage int `json:"perPage"`
}

// Offset returns the zero based row offset for the page. It saturates at math.MaxInt
// instead of overflowing.
func (p Page) Offset() int {
	if p.Number <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Number - 1) * p.PerPage
}

// TotalPages returns the number of pages needed for total rows.
func (p Page) TotalPages(total int) int {
	if p.PerPage <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}
