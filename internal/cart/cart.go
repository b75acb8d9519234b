// Package cart holds the order-in-progress for one till session.
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/binhetc/pos-ai/internal/catalog"
)

// Line pairs one product with a positive quantity. A cart holds at most one
// line per product id.
type Line struct {
	Product  catalog.Product
	Quantity int
}

// Subtotal is price × quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is an immutable copy of the cart handed to subscribers and
// checkout. Mutating a snapshot never touches engine state.
type Snapshot struct {
	Lines      []Line
	Total      decimal.Decimal
	ItemCount  int
	CapturedAt time.Time
}
