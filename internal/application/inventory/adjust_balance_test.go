package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

func TestAdjustBalance_PermiteNegativo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.receipt(t, "R-1", line(whMain, matCem, "2", "1"))

	entry, err := f.uc.AdjustBalance(ctx, inventory.AdjustmentInput{
		WarehouseID: whMain,
		MaterialID:  matCem,
		Delta:       dec("-5.00005"),
		Remarks:     "merma por humedad",
		UserID:      userID,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindAdjustment, entry.Kind)
	assert.Equal(t, entity.ReferenceDocAdjustment, entry.ReferenceDocType)
	assert.Empty(t, entry.ReferenceDocID)
	assert.Equal(t, "merma por humedad", entry.Remarks)
	assertQty(t, "-5.0001", entry.QtyChange)
	assert.Nil(t, entry.UnitPrice)
	assert.Nil(t, entry.TotalPrice)
	assertQty(t, "-3.0001", f.quantity(t, whMain, matCem))
	f.assertReconciled(t)
}

func TestAdjustBalance_ConPrecioCalculaTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	price := dec("2.50")

	entry, err := f.uc.AdjustBalance(ctx, inventory.AdjustmentInput{
		WarehouseID: whSide,
		MaterialID:  matSand,
		Delta:       dec("3.3333"),
		UnitPrice:   &price,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.TotalPrice)
	assert.Equal(t, "8.33", entry.TotalPrice.StringFixed(2))
	assert.Equal(t, inventory.DefaultCurrency, entry.Currency)
	assert.Equal(t, "Manual adjustment", entry.Remarks)

	got, err := f.queries.QueryLedger(ctx, repository.LedgerFilter{Kind: entity.MovementKindAdjustment})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
}

func TestAdjustBalance_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	negative := dec("-1")
	huge := dec("10000000000000000")
	thousand := dec("1000")

	tests := []struct {
		name    string
		in      inventory.AdjustmentInput
		wantErr error
	}{
		{"delta cero", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: matCem, Delta: dec("0.00001")}, domain.ErrInvalidInput},
		{"sin bodega", inventory.AdjustmentInput{MaterialID: matCem, Delta: dec("1")}, domain.ErrInvalidInput},
		{"sin material", inventory.AdjustmentInput{WarehouseID: whMain, Delta: dec("1")}, domain.ErrInvalidInput},
		{"precio negativo", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: matCem, Delta: dec("1"), UnitPrice: &negative}, domain.ErrInvalidInput},
		{"delta con 18 dígitos enteros", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: matCem, Delta: dec("-123456789012345678.5")}, domain.ErrInvalidInput},
		{"precio fuera de rango", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: matCem, Delta: dec("1"), UnitPrice: &huge}, domain.ErrInvalidInput},
		{"total fuera de rango", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: matCem, Delta: dec("99999999999999"), UnitPrice: &thousand}, domain.ErrInvalidInput},
		{"material inexistente", inventory.AdjustmentInput{WarehouseID: whMain, MaterialID: "M-404", Delta: dec("1")}, domain.ErrNotFound},
		{"bodega inexistente", inventory.AdjustmentInput{WarehouseID: "W-404", MaterialID: matCem, Delta: dec("1")}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.AdjustBalance(ctx, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, f.store.LedgerLen())
}
