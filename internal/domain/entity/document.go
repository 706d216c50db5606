package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de movimiento.
const (
	DocumentTypeReceipt = "receipt" // entrada (proveedor)
	DocumentTypeIssue   = "issue"   // salida (cliente)
)

// Document documento de entrada o salida con sus líneas.
// TotalAmount = suma de TotalPrice de las líneas.
type Document struct {
	ID             string
	Type           string
	DocumentNumber string
	Date           time.Time
	CounterpartyID string // proveedor en entradas, cliente en salidas
	Currency       string
	TotalAmount    decimal.Decimal
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []DocumentItem
}

// DocumentItem línea de un documento. TotalPrice = round(Qty * UnitPrice, 2).
type DocumentItem struct {
	ID          string
	DocumentID  string
	LineNo      int
	MaterialID  string
	WarehouseID string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Currency    string
	TotalPrice  decimal.Decimal
	Notes       string
}

// Key devuelve el par (bodega, material) de la línea.
func (i *DocumentItem) Key() StockKey {
	return StockKey{WarehouseID: i.WarehouseID, MaterialID: i.MaterialID}
}

// ReferenceType devuelve el tipo de referencia que usa el kardex para este documento.
func (d *Document) ReferenceType() string {
	if d.Type == DocumentTypeIssue {
		return ReferenceDocIssue
	}
	return ReferenceDocReceipt
}

// MovementKind devuelve el tipo de movimiento del posteo original del documento.
func (d *Document) MovementKind() string {
	if d.Type == DocumentTypeIssue {
		return MovementKindIssue
	}
	return MovementKindReceipt
}

// IsValidDocumentType indica si t es un tipo de documento conocido.
func IsValidDocumentType(t string) bool {
	return t == DocumentTypeReceipt || t == DocumentTypeIssue
}
