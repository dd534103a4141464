package feed

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/store"
)

// Page is one fixed-size slice of a sequence.
type Page struct {
	Items       []models.Post
	Number      int
	PerPage     int
	Count       int64
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// Paginator slices sequences into pages of PerPage items.
type Paginator struct {
	PerPage int
}

// NewPaginator creates a Paginator; perPage below 1 is treated as 1.
func NewPaginator(perPage int) Paginator {
	if perPage < 1 {
		perPage = 1
	}
	return Paginator{PerPage: perPage}
}

// ParsePageNumber reads a 1-based page number. Missing, malformed, zero or
// negative values mean page 1. Positive numbers too large for an int become
// math.MaxInt so that Paginate clamps them to the last page.
func ParsePageNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && allDigits(raw) {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func allDigits(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Paginate returns the requested page of seq. Numbers past the last page
// are clamped to it; an empty sequence has a single empty page.
func (p Paginator) Paginate(ctx context.Context, seq store.Sequence, rawPage string) (Page, error) {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = 1
	}
	count, err := seq.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	totalPages := int((count + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	number := ParsePageNumber(rawPage)
	if number > totalPages {
		number = totalPages
	}

	items := []models.Post{}
	if count > 0 {
		if items, err = seq.Slice(ctx, (number-1)*perPage, perPage); err != nil {
			return Page{}, err
		}
	}
	return Page{
		Items:       items,
		Number:      number,
		PerPage:     perPage,
		Count:       count,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}, nil
}
