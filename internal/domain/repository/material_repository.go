package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (DIP).
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	List(ctx context.Context, limit, offset int) ([]*entity.Material, error)
}
