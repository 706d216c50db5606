package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementKindReceipt    = "receipt"    // entrada por documento
	MovementKindIssue      = "issue"      // salida por documento
	MovementKindAdjustment = "adjustment" // ajuste manual sin documento
	MovementKindReversal   = "reversal"   // compensación de un documento editado o eliminado
	MovementKindEdit       = "edit"       // líneas nuevas de un documento editado
)

// Tipos de documento de referencia en el kardex.
const (
	ReferenceDocReceipt    = "Receipt"
	ReferenceDocIssue      = "Issue"
	ReferenceDocAdjustment = "Adjustment"
)

// IsValidMovementKind indica si kind es un tipo de movimiento conocido.
func IsValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindReceipt, MovementKindIssue, MovementKindAdjustment, MovementKindReversal, MovementKindEdit:
		return true
	}
	return false
}

// LedgerEntry registro inmutable del kardex. Las correcciones son registros nuevos
// con el mismo ReferenceDocID; no existe update ni delete.
type LedgerEntry struct {
	ID               int64
	Timestamp        time.Time
	WarehouseID      string
	MaterialID       string
	Kind             string
	QtyChange        decimal.Decimal  // con signo, 4 decimales
	UnitPrice        *decimal.Decimal // 2 decimales, opcional
	Currency         string
	TotalPrice       *decimal.Decimal // 2 decimales, mismo signo que QtyChange
	ReferenceDocType string
	ReferenceDocID   string
	Remarks          string
	CreatedBy        string
}

// Key devuelve el par (bodega, material) del registro.
func (e *LedgerEntry) Key() StockKey {
	return StockKey{WarehouseID: e.WarehouseID, MaterialID: e.MaterialID}
}
