package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// MovementLineRequest línea de un documento de entrada o salida.
// Qty y UnitPrice aceptan número o cadena ("3.3333").
type MovementLineRequest struct {
	MaterialID  string          `json:"material_id" validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Currency    string          `json:"currency" validate:"omitempty,len=3"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// MovementRequest body para POST/PUT /api/receipts y /api/issues.
type MovementRequest struct {
	DocumentNumber string                `json:"document_number" validate:"required,min=1,max=100"`
	Date           *time.Time            `json:"date"`
	CounterpartyID string                `json:"counterparty_id" validate:"max=100"`
	Currency       string                `json:"currency" validate:"omitempty,len=3"`
	Notes          string                `json:"notes" validate:"max=1000"`
	Items          []MovementLineRequest `json:"items" validate:"required,min=1,dive"`
}

// ToInput convierte el body al caso de uso; el tipo sale de la ruta y el usuario del token.
func (r MovementRequest) ToInput(docType, userID string) inventory.MovementInput {
	in := inventory.MovementInput{
		Type:           docType,
		DocumentNumber: r.DocumentNumber,
		Date:           r.Date,
		CounterpartyID: r.CounterpartyID,
		Currency:       r.Currency,
		Notes:          r.Notes,
		UserID:         userID,
		Items:          make([]inventory.MovementLineInput, len(r.Items)),
	}
	for i, it := range r.Items {
		in.Items[i] = inventory.MovementLineInput{
			MaterialID:  it.MaterialID,
			WarehouseID: it.WarehouseID,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			Currency:    it.Currency,
			Notes:       it.Notes,
		}
	}
	return in
}

// AdjustmentRequest body para POST /api/stock/adjustments. Delta con signo.
type AdjustmentRequest struct {
	WarehouseID string           `json:"warehouse_id" validate:"required,uuid"`
	MaterialID  string           `json:"material_id" validate:"required,uuid"`
	Delta       decimal.Decimal  `json:"delta"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Currency    string           `json:"currency" validate:"omitempty,len=3"`
	Remarks     string           `json:"remarks" validate:"max=500"`
}

// ToInput convierte el body al caso de uso.
func (r AdjustmentRequest) ToInput(userID string) inventory.AdjustmentInput {
	return inventory.AdjustmentInput{
		WarehouseID: r.WarehouseID,
		MaterialID:  r.MaterialID,
		Delta:       r.Delta,
		UnitPrice:   r.UnitPrice,
		Currency:    r.Currency,
		Remarks:     r.Remarks,
		UserID:      userID,
	}
}

// MovementLineResponse línea de un documento.
type MovementLineResponse struct {
	ID          string `json:"id"`
	LineNo      int    `json:"line_no"`
	MaterialID  string `json:"material_id"`
	WarehouseID string `json:"warehouse_id"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	Currency    string `json:"currency"`
	TotalPrice  string `json:"total_price"`
	Notes       string `json:"notes,omitempty"`
}

// MovementResponse documento con sus líneas.
type MovementResponse struct {
	ID             string                 `json:"id"`
	Type           string                 `json:"type"`
	DocumentNumber string                 `json:"document_number"`
	Date           time.Time              `json:"date"`
	CounterpartyID string                 `json:"counterparty_id,omitempty"`
	Currency       string                 `json:"currency"`
	TotalAmount    string                 `json:"total_amount"`
	Notes          string                 `json:"notes,omitempty"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Items          []MovementLineResponse `json:"items"`
}

// MovementListResponse lista paginada de documentos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LedgerEntryResponse registro del kardex.
type LedgerEntryResponse struct {
	ID               int64     `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	WarehouseID      string    `json:"warehouse_id"`
	MaterialID       string    `json:"material_id"`
	Kind             string    `json:"kind"`
	QtyChange        string    `json:"qty_change"`
	UnitPrice        *string   `json:"unit_price,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	TotalPrice       *string   `json:"total_price,omitempty"`
	ReferenceDocType string    `json:"reference_doc_type"`
	ReferenceDocID   string    `json:"reference_doc_id,omitempty"`
	Remarks          string    `json:"remarks,omitempty"`
	CreatedBy        string    `json:"created_by,omitempty"`
}

// LedgerListResponse página del kardex.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// BalanceResponse saldo actual de un par (bodega, material).
type BalanceResponse struct {
	WarehouseID       string    `json:"warehouse_id"`
	MaterialID        string    `json:"material_id"`
	Quantity          string    `json:"quantity"`
	ReservedQuantity  string    `json:"reserved_quantity"`
	AvailableQuantity string    `json:"available_quantity"`
	LastUpdated       time.Time `json:"last_updated"`
}

// BalanceListResponse página de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LowStockResponse material por debajo de su mínimo en una bodega.
type LowStockResponse struct {
	MaterialID   string `json:"material_id"`
	MaterialCode string `json:"material_code"`
	MaterialName string `json:"material_name"`
	WarehouseID  string `json:"warehouse_id"`
	MinStock     string `json:"min_stock"`
	Quantity     string `json:"quantity"`
	Available    string `json:"available_quantity"`
}

func qtyString(d decimal.Decimal) string   { return d.StringFixed(4) }
func moneyString(d decimal.Decimal) string { return d.StringFixed(2) }

// NewMovementResponse mapea un documento a su salida.
func NewMovementResponse(d *entity.Document) MovementResponse {
	out := MovementResponse{
		ID:             d.ID,
		Type:           d.Type,
		DocumentNumber: d.DocumentNumber,
		Date:           d.Date,
		CounterpartyID: d.CounterpartyID,
		Currency:       d.Currency,
		TotalAmount:    moneyString(d.TotalAmount),
		Notes:          d.Notes,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Items:          make([]MovementLineResponse, len(d.Items)),
	}
	for i, it := range d.Items {
		out.Items[i] = MovementLineResponse{
			ID:          it.ID,
			LineNo:      it.LineNo,
			MaterialID:  it.MaterialID,
			WarehouseID: it.WarehouseID,
			Qty:         qtyString(it.Qty),
			UnitPrice:   moneyString(it.UnitPrice),
			Currency:    it.Currency,
			TotalPrice:  moneyString(it.TotalPrice),
			Notes:       it.Notes,
		}
	}
	return out
}

// NewLedgerEntryResponse mapea un registro del kardex.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	out := LedgerEntryResponse{
		ID:               e.ID,
		Timestamp:        e.Timestamp,
		WarehouseID:      e.WarehouseID,
		MaterialID:       e.MaterialID,
		Kind:             e.Kind,
		QtyChange:        qtyString(e.QtyChange),
		Currency:         e.Currency,
		ReferenceDocType: e.ReferenceDocType,
		ReferenceDocID:   e.ReferenceDocID,
		Remarks:          e.Remarks,
		CreatedBy:        e.CreatedBy,
	}
	if e.UnitPrice != nil {
		s := moneyString(*e.UnitPrice)
		out.UnitPrice = &s
	}
	if e.TotalPrice != nil {
		s := moneyString(*e.TotalPrice)
		out.TotalPrice = &s
	}
	return out
}

// NewLedgerEntryResponses mapea una página del kardex; nunca devuelve nil.
func NewLedgerEntryResponses(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewLedgerEntryResponse(e))
	}
	return out
}

// NewBalanceResponse mapea un saldo.
func NewBalanceResponse(b *entity.Balance) BalanceResponse {
	return BalanceResponse{
		WarehouseID:       b.WarehouseID,
		MaterialID:        b.MaterialID,
		Quantity:          qtyString(b.Quantity),
		ReservedQuantity:  qtyString(b.ReservedQuantity),
		AvailableQuantity: qtyString(b.Available()),
		LastUpdated:       b.LastUpdated,
	}
}

// NewLowStockResponse mapea un ítem del reporte de bajo stock.
func NewLowStockResponse(it repository.LowStockItem) LowStockResponse {
	return LowStockResponse{
		MaterialID:   it.MaterialID,
		MaterialCode: it.MaterialCode,
		MaterialName: it.MaterialName,
		WarehouseID:  it.WarehouseID,
		MinStock:     qtyString(it.MinStock),
		Quantity:     qtyString(it.Quantity),
		Available:    qtyString(it.Available),
	}
}
