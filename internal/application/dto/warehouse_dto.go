package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	Address      string           `json:"address" validate:"max=500"`
	ManagerName  string           `json:"manager_name" validate:"max=200"`
	Capacity     *decimal.Decimal `json:"capacity"`
	CapacityUnit string           `json:"capacity_unit" validate:"max=20"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Address      *string          `json:"address" validate:"omitempty,max=500"`
	ManagerName  *string          `json:"manager_name" validate:"omitempty,max=200"`
	Capacity     *decimal.Decimal `json:"capacity"`
	CapacityUnit *string          `json:"capacity_unit" validate:"omitempty,max=20"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Address      string           `json:"address"`
	ManagerName  string           `json:"manager_name,omitempty"`
	Capacity     *decimal.Decimal `json:"capacity,omitempty"`
	CapacityUnit string           `json:"capacity_unit,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
