package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse representa una bodega donde se almacenan materiales.
type Warehouse struct {
	ID           string
	Name         string
	Address      string
	ManagerName  string
	Capacity     *decimal.Decimal
	CapacityUnit string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
