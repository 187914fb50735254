package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	// MaxPage keeps Offset within int for every limit Parse allows.
	MaxPage = math.MaxInt / MaxLimit
)

type Page struct {
	Page  int
	Limit int
}

// Parse normalises raw query values: 1 <= page <= MaxPage,
// 1 <= limit <= MaxLimit.
// Unparseable values fall back to the defaults.
func Parse(page, limit string) Page {
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		p = 1
	}
	if p > MaxPage {
		p = MaxPage
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l < 1 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return Page{Page: p, Limit: l}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}
