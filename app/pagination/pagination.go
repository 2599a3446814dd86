package pagination

import (
	"strconv"
	"strings"
)

// PerPage is the number of posts shown on every paginated listing.
const PerPage = 10

// Paginator splits Count items into pages of PerPage items.
type Paginator struct {
	Count   int
	PerPage int
}

// New returns a Paginator over count items using PerPage.
func New(count int) Paginator {
	return Paginator{Count: count, PerPage: PerPage}
}

func (p Paginator) perPage() int {
	if p.PerPage <= 0 {
		return PerPage
	}
	return p.PerPage
}

// NumPages returns the number of pages; an empty listing still has one page.
func (p Paginator) NumPages() int {
	if p.Count <= 0 {
		return 1
	}
	return (p.Count + p.perPage() - 1) / p.perPage()
}

// Requested parses a raw page query value without clamping it to the last page.
// Anything that is not a positive integer yields 1.
func Requested(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Number resolves a raw page query value to a valid page number. Anything that
// is not an integer yields the first page and numbers past the end yield the last.
func (p Paginator) Number(raw string) int {
	n := Requested(raw)
	if last := p.NumPages(); n > last {
		return last
	}
	return n
}

// Bounds returns the limit and offset for page number n.
func (p Paginator) Bounds(n int) (limit, offset int) {
	if n < 1 {
		n = 1
	}
	return p.perPage(), (n - 1) * p.perPage()
}

// Page is one page of items along with its position in the listing.
type Page[T any] struct {
	Items     []T
	Number    int
	Paginator Paginator
}

// NewPage wraps items as page number n of paginator.
func NewPage[T any](items []T, n int, paginator Paginator) *Page[T] {
	return &Page[T]{Items: items, Number: n, Paginator: paginator}
}

func (p *Page[T]) Len() int {
	return len(p.Items)
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.Paginator.NumPages()
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, starting at 1.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.Paginator.NumPages())
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
