package repository

import "errors"

var (
	// ErrNotFound is returned when the targeted row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleVersion is returned when a versioned write matched the id but
	// not the expected version. The caller decides whether to re-read and
	// retry; repositories never do.
	ErrStaleVersion = errors.New("stale record version")
)

// PageRequest addresses one page of a result set. Page is 0-based.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Limit() int {
	return p.Size
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}
