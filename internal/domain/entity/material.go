package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un material o artículo del almacén.
type Material struct {
	ID         string
	Code       string // código único
	Name       string
	Unit       string
	Price      decimal.Decimal
	Currency   string
	MinStock   decimal.Decimal // umbral para el reporte de bajo stock
	CategoryID string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
