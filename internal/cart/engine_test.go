package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/binhetc/pos-ai/internal/catalog"
)

func product(id string, price int64) catalog.Product {
	return catalog.Product{
		ID:    id,
		Name:  "product " + id,
		SKU:   "SKU-" + id,
		Price: decimal.NewFromInt(price),
	}
}

func TestAddItemMergesLinesForSameProduct(t *testing.T) {
	e := NewEngine(nil)
	p := product("p1", 100)

	require.NoError(t, e.AddItem(p, 2))
	require.NoError(t, e.AddItem(p, 3))

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 5, snap.Lines[0].Quantity)
	assert.Equal(t, 5, e.ItemCount())
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	e := NewEngine(nil)
	p := product("p1", 100)

	require.ErrorIs(t, e.AddItem(p, 0), ErrInvalidQuantity)
	require.ErrorIs(t, e.AddItem(p, -2), ErrInvalidQuantity)
	assert.Equal(t, 0, e.ItemCount())
}

func TestSetQuantityRemovesLine(t *testing.T) {
	tests := map[string]int{
		"zero removes":     0,
		"negative removes": -1,
	}
	for name, qty := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewEngine(nil)
			require.NoError(t, e.AddItem(product("p1", 100), 2))

			e.SetQuantity("p1", qty)

			assert.Empty(t, e.Snapshot().Lines)
			assert.True(t, e.Total().IsZero())
		})
	}
}

func TestSetQuantityUnknownIDIsNoOp(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.AddItem(product("p1", 100), 1))

	notified := 0
	defer e.Subscribe(func(Snapshot) { notified++ })()

	e.SetQuantity("ghost", 4)

	assert.Equal(t, 1, e.ItemCount())
	assert.Equal(t, 0, notified, "no-op must not notify")
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.AddItem(product("p1", 100), 1))

	e.RemoveItem("p1")
	e.RemoveItem("p1")

	assert.Equal(t, 0, e.ItemCount())
}

func TestRemoveMiddleLineKeepsInsertionOrder(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.AddItem(product("a", 10), 1))
	require.NoError(t, e.AddItem(product("b", 20), 1))
	require.NoError(t, e.AddItem(product("c", 30), 1))

	e.RemoveItem("b")
	require.NoError(t, e.AddItem(product("c", 30), 1))

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, "a", snap.Lines[0].Product.ID)
	assert.Equal(t, "c", snap.Lines[1].Product.ID)
	assert.Equal(t, 2, snap.Lines[1].Quantity)
}

func TestClearAlwaysYieldsEmptyCart(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.AddItem(product("p1", 25000), 3))
	require.NoError(t, e.AddItem(product("p2", 4000), 1))

	e.Clear()

	assert.Equal(t, 0, e.ItemCount())
	assert.True(t, e.Total().IsZero())

	// Clearing again is harmless and does not notify.
	notified := 0
	defer e.Subscribe(func(Snapshot) { notified++ })()
	e.Clear()
	assert.Equal(t, 0, notified)
}

func TestRunningTotalScenario(t *testing.T) {
	e := NewEngine(nil)
	p := product("p1", 25000)

	require.NoError(t, e.AddItem(p, 1))
	assert.True(t, e.Total().Equal(decimal.NewFromInt(25000)), "got %s", e.Total())

	require.NoError(t, e.AddItem(p, 1))
	assert.True(t, e.Total().Equal(decimal.NewFromInt(50000)), "got %s", e.Total())

	e.SetQuantity("p1", 0)
	assert.Empty(t, e.Snapshot().Lines)
	assert.True(t, e.Total().IsZero())
}

// TestTotalMatchesModel drives the engine with random mutation sequences and
// checks the total invariant against a naive map model after every step.
func TestTotalMatchesModel(t *testing.T) {
	seed := rand.Int63()
	rng := rand.New(rand.NewSource(seed))
	t.Logf("seed %d", seed)

	products := []catalog.Product{
		product("p1", 1999), product("p2", 500), product("p3", 120000), product("p4", 75),
	}

	e := NewEngine(nil)
	model := map[string]int{}

	for i := 0; i < 500; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0:
			qty := rng.Intn(5) + 1
			require.NoError(t, e.AddItem(p, qty))
			model[p.ID] += qty
		case 1:
			qty := rng.Intn(7) - 2 // occasionally non-positive
			e.SetQuantity(p.ID, qty)
			if _, ok := model[p.ID]; ok {
				if qty <= 0 {
					delete(model, p.ID)
				} else {
					model[p.ID] = qty
				}
			}
		case 2:
			e.RemoveItem(p.ID)
			delete(model, p.ID)
		case 3:
			// read-only probe
			_ = e.ItemCount()
		}

		want := decimal.Zero
		count := 0
		for _, mp := range products {
			if q, ok := model[mp.ID]; ok {
				want = want.Add(mp.Price.Mul(decimal.NewFromInt(int64(q))))
				count += q
			}
		}
		require.Truef(t, e.Total().Equal(want), "step %d: total %s, want %s", i, e.Total(), want)
		require.Equal(t, count, e.ItemCount(), "step %d", i)
	}
}

func TestSubscriberSeesFullyAppliedState(t *testing.T) {
	e := NewEngine(nil)

	var got []Snapshot
	unsubscribe := e.Subscribe(func(s Snapshot) { got = append(got, s) })
	defer unsubscribe()

	require.NoError(t, e.AddItem(product("p1", 100), 2))

	require.Len(t, got, 1, "exactly one notification per mutation")
	assert.Equal(t, 2, got[0].ItemCount)
	assert.True(t, got[0].Total.Equal(decimal.NewFromInt(200)))
}

func TestSnapshotIsDetachedFromEngineStorage(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.AddItem(product("p1", 100), 1))

	snap := e.Snapshot()
	snap.Lines[0].Quantity = 99

	assert.Equal(t, 1, e.ItemCount())
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	e := NewEngine(nil)

	calls := 0
	unsubscribe := e.Subscribe(func(Snapshot) { calls++ })

	require.NoError(t, e.AddItem(product("p1", 100), 1))
	unsubscribe()
	unsubscribe() // double unsubscribe is harmless
	require.NoError(t, e.AddItem(product("p1", 100), 1))

	assert.Equal(t, 1, calls)
}

func TestListenerMayCallBackIntoEngine(t *testing.T) {
	e := NewEngine(nil)

	var totals []decimal.Decimal
	defer e.Subscribe(func(s Snapshot) { totals = append(totals, e.Total()) })()

	require.NoError(t, e.AddItem(product("p1", 100), 1))
	require.Len(t, totals, 1)
}

func TestConcurrentAddItem(t *testing.T) {
	e := NewEngine(nil)
	p := product("p1", 100)

	const n = 100
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error { return e.AddItem(p, 1) })
	}
	require.NoError(t, g.Wait())

	snap := e.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, n, snap.Lines[0].Quantity)
}
