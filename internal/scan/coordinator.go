// Package scan orchestrates camera and manual code entry for the till.
package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/binhetc/pos-ai/internal/catalog"
	"github.com/binhetc/pos-ai/internal/resolver"
)

// State is the coordinator's single tagged state. Exactly one surface can
// be open at a time; there are no independent visibility flags to drift
// out of sync.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateManualEntry
	StateResolving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateManualEntry:
		return "manual-entry"
	case StateResolving:
		return "resolving"
	default:
		return "unknown"
	}
}

var (
	// ErrNoCamera tells the caller to fall back to manual entry.
	ErrNoCamera = errors.New("scan: no camera available")
	// ErrInvalidState rejects a transition not allowed from the current state.
	ErrInvalidState = errors.New("scan: operation not allowed in current state")
)

// OutcomeKind classifies how one resolution attempt ended.
type OutcomeKind int

const (
	// OutcomeAdded: the code resolved and one unit went into the cart.
	OutcomeAdded OutcomeKind = iota
	// OutcomeNotFound: no product matched; the cart was not touched and the
	// caller may reopen manual entry.
	OutcomeNotFound
	// OutcomeLookupFailed: a lookup request failed; Err carries the cause
	// and the cart was not touched.
	OutcomeLookupFailed
)

type Outcome struct {
	Kind    OutcomeKind
	Product catalog.Product
	Err     error
}

// ProductResolver resolves a code to a product. resolver.ErrNotFound is the
// expected miss signal.
type ProductResolver interface {
	Resolve(ctx context.Context, code string) (catalog.Product, error)
}

// CartAdder is the slice of the cart engine the coordinator mutates.
type CartAdder interface {
	AddItem(p catalog.Product, qty int) error
}

// Coordinator owns the scan state machine. A scanning session accepts only
// its first detected code; repeated camera frames of the same physical scan
// are dropped until the session closes.
type Coordinator struct {
	resolve   ProductResolver
	cart      CartAdder
	hasCamera bool
	log       *zap.Logger

	mu       sync.Mutex
	state    State
	session  string // id of the open scanning/manual session
	accepted bool   // a code was already accepted in this session
}

func NewCoordinator(res ProductResolver, cart CartAdder, hasCamera bool, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{resolve: res, cart: cart, hasCamera: hasCamera, log: log}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartScan opens the camera scanning surface. Without a camera it returns
// ErrNoCamera and the caller should open manual entry instead.
func (c *Coordinator) StartScan() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrInvalidState
	}
	if !c.hasCamera {
		return ErrNoCamera
	}
	c.state = StateScanning
	c.session = uuid.NewString()
	c.accepted = false
	c.log.Debug("scan session opened", zap.String("session", c.session))
	return nil
}

// OpenManualEntry opens the typed-code surface.
func (c *Coordinator) OpenManualEntry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrInvalidState
	}
	c.state = StateManualEntry
	c.session = uuid.NewString()
	c.accepted = false
	return nil
}

// Cancel returns to Idle from any state without side effects. A resolution
// already in flight keeps running but its result is discarded and the cart
// is not mutated.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.session = ""
	c.accepted = false
}

// CodeDetected feeds a camera frame's decoded value in. Only the first code
// of a scanning session is accepted; for every later frame (or when no scan
// session is open) it reports ok=false and does nothing.
func (c *Coordinator) CodeDetected(ctx context.Context, code string) (Outcome, bool) {
	c.mu.Lock()
	if c.state != StateScanning || c.accepted {
		c.mu.Unlock()
		return Outcome{}, false
	}
	c.accepted = true
	c.state = StateResolving
	session := c.session
	c.mu.Unlock()

	return c.finishResolve(ctx, session, code)
}

// SubmitCode feeds a manually typed code through the same resolving path as
// a detected barcode.
func (c *Coordinator) SubmitCode(ctx context.Context, code string) (Outcome, bool) {
	c.mu.Lock()
	if c.state != StateManualEntry {
		c.mu.Unlock()
		return Outcome{}, false
	}
	c.accepted = true
	c.state = StateResolving
	session := c.session
	c.mu.Unlock()

	return c.finishResolve(ctx, session, code)
}

// finishResolve runs the lookup, then applies the result only if the session
// is still the one that started it. A session cancelled mid-lookup produces
// no cart mutation.
func (c *Coordinator) finishResolve(ctx context.Context, session, code string) (Outcome, bool) {
	p, err := c.resolve.Resolve(ctx, code)

	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		return Outcome{}, false
	}
	c.state = StateIdle
	c.session = ""
	c.accepted = false
	c.mu.Unlock()

	switch {
	case err == nil:
		if addErr := c.cart.AddItem(p, 1); addErr != nil {
			return Outcome{Kind: OutcomeLookupFailed, Err: addErr}, true
		}
		return Outcome{Kind: OutcomeAdded, Product: p}, true
	case errors.Is(err, resolver.ErrNotFound):
		return Outcome{Kind: OutcomeNotFound}, true
	default:
		c.log.Warn("code lookup failed", zap.String("code", code), zap.Error(err))
		return Outcome{Kind: OutcomeLookupFailed, Err: err}, true
	}
}
