package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binhetc/pos-ai/internal/catalog"
)

type fakeLookup struct {
	byBarcode map[string][]catalog.Product
	bySKU     map[string][]catalog.Product

	barcodeErr error
	skuErr     error

	barcodeCalls int
	skuCalls     int
}

func (f *fakeLookup) LookupByBarcode(_ context.Context, code string) ([]catalog.Product, error) {
	f.barcodeCalls++
	if f.barcodeErr != nil {
		return nil, f.barcodeErr
	}
	return f.byBarcode[code], nil
}

func (f *fakeLookup) LookupBySKU(_ context.Context, code string) ([]catalog.Product, error) {
	f.skuCalls++
	if f.skuErr != nil {
		return nil, f.skuErr
	}
	return f.bySKU[code], nil
}

func TestResolveBarcodeHitSkipsSKULookup(t *testing.T) {
	milk := catalog.Product{ID: "p1", Name: "Milk", Barcode: "8931234567890"}
	f := &fakeLookup{byBarcode: map[string][]catalog.Product{"8931234567890": {milk}}}

	p, err := New(f, nil).Resolve(context.Background(), "8931234567890")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, 1, f.barcodeCalls)
	assert.Equal(t, 0, f.skuCalls, "barcode hit must short-circuit")
}

func TestResolveFallsBackToSKU(t *testing.T) {
	bread := catalog.Product{ID: "p2", Name: "Bread", SKU: "BRD-1"}
	f := &fakeLookup{bySKU: map[string][]catalog.Product{"BRD-1": {bread}}}

	p, err := New(f, nil).Resolve(context.Background(), "BRD-1")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
	assert.Equal(t, 1, f.barcodeCalls)
	assert.Equal(t, 1, f.skuCalls)
}

func TestResolveNotFoundAfterExactlyTwoLookups(t *testing.T) {
	f := &fakeLookup{}

	_, err := New(f, nil).Resolve(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, f.barcodeCalls)
	assert.Equal(t, 1, f.skuCalls)
}

func TestResolveNetworkErrorIsNotNotFound(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("barcode step", func(t *testing.T) {
		f := &fakeLookup{barcodeErr: boom}
		_, err := New(f, nil).Resolve(context.Background(), "123")
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, f.skuCalls, "a failed step is surfaced, not skipped over")
	})

	t.Run("sku step", func(t *testing.T) {
		f := &fakeLookup{skuErr: boom}
		_, err := New(f, nil).Resolve(context.Background(), "123")
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestResolveAmbiguousCodePicksLowestID(t *testing.T) {
	f := &fakeLookup{byBarcode: map[string][]catalog.Product{
		"dup": {{ID: "p7"}, {ID: "p2"}, {ID: "p9"}},
	}}

	p, err := New(f, nil).Resolve(context.Background(), "dup")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)
}

func TestResolveTrimsWhitespace(t *testing.T) {
	milk := catalog.Product{ID: "p1", Barcode: "123"}
	f := &fakeLookup{byBarcode: map[string][]catalog.Product{"123": {milk}}}

	p, err := New(f, nil).Resolve(context.Background(), "  123\n")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestResolveEmptyCodeSkipsNetwork(t *testing.T) {
	f := &fakeLookup{}

	_, err := New(f, nil).Resolve(context.Background(), "   ")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, f.barcodeCalls)
	assert.Equal(t, 0, f.skuCalls)
}
