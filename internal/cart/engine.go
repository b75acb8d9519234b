package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/binhetc/pos-ai/internal/catalog"
)

// ErrInvalidQuantity rejects AddItem calls with a non-positive quantity.
// This is an error rather than a silent no-op so a broken caller is visible.
var ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")

// Listener receives a post-mutation snapshot. Listeners run synchronously
// on the mutating call; delivery order across listeners is unspecified.
type Listener func(Snapshot)

// Engine is the single source of truth for the order in progress. One
// engine exists per active till session and is passed to whichever
// component needs it; there is no package-level instance.
//
// All mutating methods are serialized and notify current subscribers
// exactly once, after the mutation is fully applied. No-op calls (removing
// an absent line, clearing an empty cart) do not notify.
type Engine struct {
	log *zap.Logger

	mu        sync.Mutex
	lines     []Line         // insertion order
	index     map[string]int // product id -> position in lines
	listeners map[int]Listener
	nextSub   int
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:       log,
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
	}
}

// AddItem adds qty units of p, merging into the existing line for the same
// product id if there is one.
func (e *Engine) AddItem(p catalog.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	e.mu.Lock()
	if pos, ok := e.index[p.ID]; ok {
		e.lines[pos].Quantity += qty
	} else {
		e.index[p.ID] = len(e.lines)
		e.lines = append(e.lines, Line{Product: p, Quantity: qty})
	}
	e.log.Debug("cart item added", zap.String("product_id", p.ID), zap.Int("qty", qty))
	e.notifyAndUnlock()
	return nil
}

// SetQuantity sets the line for productID to qty. A qty of zero or less
// removes the line; an unknown id is a no-op.
func (e *Engine) SetQuantity(productID string, qty int) {
	e.mu.Lock()
	pos, ok := e.index[productID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if qty <= 0 {
		e.removeAtLocked(pos)
	} else {
		e.lines[pos].Quantity = qty
	}
	e.notifyAndUnlock()
}

// RemoveItem deletes the line for productID if present. Idempotent.
func (e *Engine) RemoveItem(productID string) {
	e.mu.Lock()
	pos, ok := e.index[productID]
	if !ok {
		e.mu.Unlock()
		return
	}
	e.removeAtLocked(pos)
	e.notifyAndUnlock()
}

// Clear empties the cart. Clearing an already-empty cart changes nothing.
func (e *Engine) Clear() {
	e.mu.Lock()
	if len(e.lines) == 0 {
		e.mu.Unlock()
		return
	}
	e.lines = nil
	e.index = make(map[string]int)
	e.notifyAndUnlock()
}

// Total is recomputed from the lines on every call; it is never cached.
func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalOf(e.lines)
}

// ItemCount is the sum of quantities over all lines.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return countOf(e.lines)
}

// Snapshot returns an immutable copy of the current cart.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn and returns an unsubscribe func. Unsubscribing
// more than once is harmless.
func (e *Engine) Subscribe(fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// removeAtLocked deletes the line at pos, preserving insertion order of the
// remaining lines.
func (e *Engine) removeAtLocked(pos int) {
	removed := e.lines[pos].Product.ID
	e.lines = append(e.lines[:pos], e.lines[pos+1:]...)
	delete(e.index, removed)
	for i := pos; i < len(e.lines); i++ {
		e.index[e.lines[i].Product.ID] = i
	}
}

// notifyAndUnlock snapshots the cart and invokes subscribers after releasing
// the lock, so a listener may call back into the engine.
func (e *Engine) notifyAndUnlock() {
	snap := e.snapshotLocked()
	fns := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	lines := make([]Line, len(e.lines))
	copy(lines, e.lines)
	return Snapshot{
		Lines:      lines,
		Total:      totalOf(e.lines),
		ItemCount:  countOf(e.lines),
		CapturedAt: time.Now(),
	}
}

func totalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func countOf(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
