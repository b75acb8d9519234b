// Package resolver turns a scanned or typed code into a catalog product.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/binhetc/pos-ai/internal/catalog"
)

// ErrNotFound means both lookups ran and neither matched. It is a normal
// outcome, distinct from a transport failure.
var ErrNotFound = errors.New("resolver: no product matches code")

// CodeLookup is the slice of the gateway the resolver needs. Each call is a
// single exact-match remote query.
type CodeLookup interface {
	LookupByBarcode(ctx context.Context, code string) ([]catalog.Product, error)
	LookupBySKU(ctx context.Context, code string) ([]catalog.Product, error)
}

type Resolver struct {
	lookup CodeLookup
	log    *zap.Logger
}

func New(lookup CodeLookup, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{lookup: lookup, log: log}
}

// Resolve tries the barcode field first, then the SKU field, short-circuiting
// on the first hit. Matching is exact-string only; no fuzzy matching happens
// on this side. A transport failure on either step is returned as-is and is
// never collapsed into ErrNotFound. An empty code resolves to ErrNotFound
// without touching the network.
func (r *Resolver) Resolve(ctx context.Context, code string) (catalog.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return catalog.Product{}, ErrNotFound
	}

	items, err := r.lookup.LookupByBarcode(ctx, code)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("barcode lookup %q: %w", code, err)
	}
	if len(items) > 0 {
		return pick(items), nil
	}

	items, err = r.lookup.LookupBySKU(ctx, code)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("sku lookup %q: %w", code, err)
	}
	if len(items) > 0 {
		return pick(items), nil
	}

	r.log.Debug("code matched no product", zap.String("code", code))
	return catalog.Product{}, ErrNotFound
}

// pick breaks ties among multiple candidates deterministically by lowest id,
// instead of trusting whatever order the server returned.
func pick(items []catalog.Product) catalog.Product {
	best := items[0]
	for _, p := range items[1:] {
		if p.ID < best.ID {
			best = p
		}
	}
	return best
}
