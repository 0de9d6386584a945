package view

import (
	"sync"
	"time"

	"github.com/tutorlink/walletview/internal/model"
)

// DefaultPageSize is used when a non-positive page size is given.
const DefaultPageSize = 10

// Page is one slice of a filtered result. Pages are 1-based.
type Page struct {
	Items      []model.Entry
	Number     int
	Size       int
	TotalPages int
	Summary    Result // aggregates over the whole filtered set
}

// Paginate slices res into fixed-size pages and returns page number n,
// clamped into [1, TotalPages]. An empty result has one empty page.
func Paginate(res Result, n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := (len(res.Items) + size - 1) / size
	if total == 0 {
		total = 1
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}

	start := (n - 1) * size
	end := start + size
	if start > len(res.Items) {
		start = len(res.Items)
	}
	if end > len(res.Items) {
		end = len(res.Items)
	}

	return Page{
		Items:      res.Items[start:end],
		Number:     n,
		Size:       size,
		TotalPages: total,
		Summary:    res,
	}
}

// Pager holds a filter and current page. Changing the filter resets the
// page to the first one. It is safe for concurrent use.
type Pager struct {
	mu     sync.Mutex
	filter Filter
	page   int
	size   int
	loc    *time.Location
}

// NewPager creates a Pager on page 1 with an empty filter.
func NewPager(size int, loc *time.Location) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{page: 1, size: size, loc: loc}
}

// SetFilter replaces the filter. The page resets to 1 when it differs.
func (p *Pager) SetFilter(f Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f != p.filter {
		p.filter = f
		p.page = 1
	}
}

// SetPage moves to page n. Out-of-range values are clamped by Render.
func (p *Pager) SetPage(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = n
}

// Filter returns the current filter.
func (p *Pager) Filter() Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Render applies the current filter and page to entries. Aggregates are
// recomputed on every call.
func (p *Pager) Render(entries []model.Entry) Page {
	p.mu.Lock()
	f, n, size, loc := p.filter, p.page, p.size, p.loc
	p.mu.Unlock()

	pg := Paginate(Apply(entries, f, loc), n, size)

	p.mu.Lock()
	if p.filter == f {
		p.page = pg.Number
	}
	p.mu.Unlock()
	return pg
}
