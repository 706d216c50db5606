package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas. Las bodegas no se eliminan: el kardex las referencia.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
	now  func() time.Time
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Capacity != nil && in.Capacity.IsNegative() {
		return nil, domain.NewValidationError("capacity", "no puede ser negativa")
	}
	now := uc.now()
	warehouse := &entity.Warehouse{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Address:      in.Address,
		ManagerName:  in.ManagerName,
		Capacity:     in.Capacity,
		CapacityUnit: in.CapacityUnit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, &domain.NotFoundError{Resource: "bodega", ID: id}
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega. Solo se modifican los campos presentes.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, &domain.NotFoundError{Resource: "bodega", ID: id}
	}
	if in.Name != nil {
		warehouse.Name = *in.Name
	}
	if in.Address != nil {
		warehouse.Address = *in.Address
	}
	if in.ManagerName != nil {
		warehouse.ManagerName = *in.ManagerName
	}
	if in.Capacity != nil {
		if in.Capacity.IsNegative() {
			return nil, domain.NewValidationError("capacity", "no puede ser negativa")
		}
		warehouse.Capacity = in.Capacity
	}
	if in.CapacityUnit != nil {
		warehouse.CapacityUnit = *in.CapacityUnit
	}
	warehouse.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:           w.ID,
		Name:         w.Name,
		Address:      w.Address,
		ManagerName:  w.ManagerName,
		Capacity:     w.Capacity,
		CapacityUnit: w.CapacityUnit,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
