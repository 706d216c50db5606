package inventory_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

const (
	whMain  = "W-MAIN"
	whSide  = "W-SIDE"
	matCem  = "M-CEM"
	matSand = "M-SAND"
	matOld  = "M-OLD"
	userID  = "user-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// stepClock avanza un segundo por llamada para que el orden del kardex sea determinista.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) NewID() string { return "id-" + strconv.FormatInt(g.n.Add(1), 10) }

type fixture struct {
	store   *memory.Store
	uc      *inventory.MovementUseCase
	queries *inventory.StockQueryUseCase
}

func newFixture(t *testing.T, opts ...inventory.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(memory.WithLockTimeout(time.Second))

	for _, w := range []string{whMain, whSide} {
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: w, Name: w}))
	}
	require.NoError(t, store.Materials().Create(ctx, &entity.Material{ID: matCem, Code: "CEM", Name: "Cemento", Unit: "kg", MinStock: dec("5"), IsActive: true}))
	require.NoError(t, store.Materials().Create(ctx, &entity.Material{ID: matSand, Code: "SAND", Name: "Arena", Unit: "m3", IsActive: true}))
	require.NoError(t, store.Materials().Create(ctx, &entity.Material{ID: matOld, Code: "OLD", Name: "Descontinuado", IsActive: false}))

	base := []inventory.Option{
		inventory.WithClock(&stepClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}),
		inventory.WithIDGenerator(&seqIDs{}),
		inventory.WithRetryPolicy(inventory.RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}),
	}
	uc := inventory.NewMovementUseCase(store, store.Materials(), store.Warehouses(), append(base, opts...)...)
	return &fixture{
		store:   store,
		uc:      uc,
		queries: inventory.NewStockQueryUseCase(store.Balances(), store.Ledger(), store.Documents()),
	}
}

func line(warehouseID, materialID, qty, price string) inventory.MovementLineInput {
	return inventory.MovementLineInput{WarehouseID: warehouseID, MaterialID: materialID, Qty: dec(qty), UnitPrice: dec(price)}
}

func (f *fixture) receipt(t *testing.T, number string, lines ...inventory.MovementLineInput) *entity.Document {
	t.Helper()
	doc, err := f.uc.CreateMovement(context.Background(), inventory.MovementInput{
		Type: entity.DocumentTypeReceipt, DocumentNumber: number, UserID: userID, Items: lines,
	})
	require.NoError(t, err)
	return doc
}

func (f *fixture) issue(t *testing.T, number string, lines ...inventory.MovementLineInput) *entity.Document {
	t.Helper()
	doc, err := f.uc.CreateMovement(context.Background(), inventory.MovementInput{
		Type: entity.DocumentTypeIssue, DocumentNumber: number, UserID: userID, Items: lines,
	})
	require.NoError(t, err)
	return doc
}

// quantity saldo confirmado del par; cero si nunca se tocó.
func (f *fixture) quantity(t *testing.T, warehouseID, materialID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Balances().Get(context.Background(), warehouseID, materialID)
	require.NoError(t, err)
	if b == nil {
		return decimal.Zero
	}
	return b.Quantity
}

func assertQty(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

// assertReconciled verifica saldo = suma del kardex para cada par.
func (f *fixture) assertReconciled(t *testing.T) {
	t.Helper()
	entries, err := f.store.Ledger().Query(context.Background(), repository.LedgerFilter{})
	require.NoError(t, err)
	sums := map[entity.StockKey]decimal.Decimal{}
	for _, e := range entries {
		sums[e.Key()] = sums[e.Key()].Add(e.QtyChange)
	}
	snap := f.store.Snapshot()
	for _, b := range snap {
		assert.True(t, b.Quantity.Equal(sums[b.Key()]), "par %v: saldo %s, kardex %s", b.Key(), b.Quantity, sums[b.Key()])
		delete(sums, b.Key())
	}
	for k, s := range sums {
		assert.True(t, s.IsZero(), "par %v con kardex %s y sin saldo", k, s)
	}
}
