package services

// Pagination describes one page of a paginated listing query.
type Pagination struct {
	Number     int   `json:"number"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination clamps number into the valid page range for total items.
// There is always at least one (possibly empty) page.
func NewPagination(number, size int, total int64) Pagination {
	if size <= 0 {
		size = 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	return Pagination{Number: number, Size: size, Total: total, TotalPages: pages}
}

// Skip is the number of items before this page.
func (p Pagination) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

func (p Pagination) HasPrev() bool { return p.Number > 1 }
func (p Pagination) HasNext() bool { return p.Number < p.TotalPages }
func (p Pagination) Prev() int     { return p.Number - 1 }
func (p Pagination) Next() int     { return p.Number + 1 }
