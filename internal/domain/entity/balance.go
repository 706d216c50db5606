package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance saldo actual de un material en una bodega (instantánea materializada del kardex).
// Se crea en cero la primera vez que un movimiento toca el par; nunca se elimina.
type Balance struct {
	WarehouseID      string
	MaterialID       string
	Quantity         decimal.Decimal // con signo, 4 decimales
	ReservedQuantity decimal.Decimal // >= 0, 4 decimales; sin flujo de reservas por ahora
	LastUpdated      time.Time
}

// Available cantidad disponible = cantidad - reservada.
func (b *Balance) Available() decimal.Decimal {
	return b.Quantity.Sub(b.ReservedQuantity)
}

// StockKey identifica un par (bodega, material).
type StockKey struct {
	WarehouseID string
	MaterialID  string
}

// Key devuelve el par del saldo.
func (b *Balance) Key() StockKey {
	return StockKey{WarehouseID: b.WarehouseID, MaterialID: b.MaterialID}
}

// Less orden total de pares; se usa para tomar bloqueos siempre en el mismo orden.
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.MaterialID < o.MaterialID
}
