package model

// Page is a generic pagination envelope. Number is the 0-based page index
// that was actually queried, TotalElements the count of rows matching the
// filter across all pages.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewPage computes the derived totals for a page of content.
func NewPage[T any](content []T, number, size int, totalElements int64) Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}

	return Page[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
	}
}

// First reports whether this is the first page.
func (p Page[T]) First() bool {
	return p.Number == 0
}

// Last reports whether no further pages exist. Out-of-range pages count as
// last: they are empty and nothing follows them.
func (p Page[T]) Last() bool {
	return p.Number >= p.TotalPages-1
}
