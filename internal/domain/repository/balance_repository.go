package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// BalanceFilter filtros para listar saldos. Vacío = sin filtro.
type BalanceFilter struct {
	WarehouseID string
	MaterialID  string
	Limit       int
	Offset      int
}

// LowStockItem saldo cuya cantidad disponible está por debajo del mínimo del material.
type LowStockItem struct {
	MaterialID   string
	MaterialCode string
	MaterialName string
	WarehouseID  string
	MinStock     decimal.Decimal
	Quantity     decimal.Decimal
	Available    decimal.Decimal
}

// BalanceRepository puerto del saldo actual por (bodega, material).
// Es el único estado compartido mutable; se actualiza solo bajo bloqueo exclusivo de la fila.
type BalanceRepository interface {
	// GetForUpdate devuelve el saldo del par y lo bloquea hasta el fin de la transacción.
	// Si no existe crea una fila en cero.
	GetForUpdate(ctx context.Context, warehouseID, materialID string) (*entity.Balance, error)
	// ApplyDelta suma delta a quantity, recuantiza y persiste. Requiere el bloqueo de GetForUpdate.
	ApplyDelta(ctx context.Context, warehouseID, materialID string, delta decimal.Decimal, at time.Time) (*entity.Balance, error)
	// Get lectura sin bloqueo; nil si el par nunca tuvo movimientos.
	Get(ctx context.Context, warehouseID, materialID string) (*entity.Balance, error)
	List(ctx context.Context, filter BalanceFilter) ([]*entity.Balance, error)

	// ListBelowMinStock devuelve los pares con disponible < min_stock, menor disponible primero.
	ListBelowMinStock(ctx context.Context) ([]LowStockItem, error)
}
