package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DefaultPageSize matches the grid page size used by the terminal UI.
const DefaultPageSize = 30

// ProductLister is the slice of the gateway the paginator needs.
type ProductLister interface {
	ListProducts(ctx context.Context, q ListProductsQuery) (ProductPage, error)
}

// Paginator incrementally loads the product grid for one filter. Responses
// carry the generation they were requested under; a response whose
// generation no longer matches is dropped, which covers both overlapping
// loads and a slow page arriving after the filter changed.
type Paginator struct {
	lister   ProductLister
	pageSize int
	log      *zap.Logger

	mu         sync.Mutex
	search     string
	categoryID string
	page       int
	items      []Product
	hasMore    bool
	inFlight   bool
	gen        uint64
}

func NewPaginator(lister ProductLister, pageSize int, log *zap.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Paginator{
		lister:   lister,
		pageSize: pageSize,
		log:      log,
		hasMore:  true,
	}
}

// SetFilter replaces the current filter, clears the accumulated list and
// loads page 1. A load already in flight for the previous filter keeps
// running; its response is discarded on arrival.
func (p *Paginator) SetFilter(ctx context.Context, search, categoryID string) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.search = search
	p.categoryID = categoryID
	p.page = 0
	p.items = nil
	p.hasMore = true
	p.inFlight = true
	q := p.queryLocked(1)
	p.mu.Unlock()

	return p.fetch(ctx, gen, 1, q)
}

// LoadNext requests the next page. It is a no-op while a load is in flight
// or once the end of the list was reached; both checks happen synchronously
// before any I/O, so rapid repeated end-of-list events cannot stack requests.
func (p *Paginator) LoadNext(ctx context.Context) error {
	p.mu.Lock()
	if p.inFlight || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	gen := p.gen
	next := p.page + 1
	q := p.queryLocked(next)
	p.mu.Unlock()

	return p.fetch(ctx, gen, next, q)
}

func (p *Paginator) fetch(ctx context.Context, gen uint64, pageNum int, q ListProductsQuery) error {
	res, err := p.lister.ListProducts(ctx, q)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		// Filter changed while the request was out; result belongs to a
		// list that no longer exists.
		p.log.Debug("discarding stale catalog page",
			zap.Uint64("request_gen", gen),
			zap.Uint64("current_gen", p.gen),
			zap.Int("page", pageNum))
		return nil
	}

	p.inFlight = false
	if err != nil {
		return fmt.Errorf("load catalog page %d: %w", pageNum, err)
	}

	p.items = append(p.items, res.Items...)
	p.page = pageNum
	p.hasMore = len(res.Items) == p.pageSize
	return nil
}

func (p *Paginator) queryLocked(pageNum int) ListProductsQuery {
	return ListProductsQuery{
		Page:       pageNum,
		Size:       p.pageSize,
		Search:     p.search,
		CategoryID: p.categoryID,
	}
}

// Items returns a copy of the accumulated list in server order.
func (p *Paginator) Items() []Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Product, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore reports whether the last page came back full.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// InFlight reports whether a load is currently running.
func (p *Paginator) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Filter returns the current search text and category id.
func (p *Paginator) Filter() (search, categoryID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.search, p.categoryID
}
