package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear un material.
type CreateMaterialRequest struct {
	Code       string          `json:"code" validate:"required,min=1,max=50"`
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	Unit       string          `json:"unit" validate:"max=20"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency" validate:"omitempty,len=3"`
	MinStock   decimal.Decimal `json:"min_stock"`
	CategoryID string          `json:"category_id"`
}

// UpdateMaterialRequest entrada para actualizar un material. IsActive=false lo retira de nuevos documentos.
type UpdateMaterialRequest struct {
	Code       *string          `json:"code" validate:"omitempty,min=1,max=50"`
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit       *string          `json:"unit" validate:"omitempty,max=20"`
	Price      *decimal.Decimal `json:"price"`
	Currency   *string          `json:"currency" validate:"omitempty,len=3"`
	MinStock   *decimal.Decimal `json:"min_stock"`
	CategoryID *string          `json:"category_id"`
	IsActive   *bool            `json:"is_active"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit,omitempty"`
	Price      string    `json:"price"`
	Currency   string    `json:"currency"`
	MinStock   string    `json:"min_stock"`
	CategoryID string    `json:"category_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MaterialListResponse lista paginada de materiales.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
