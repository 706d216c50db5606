package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	fixed "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materiales. El stock solo cambia vía movimientos.
type MaterialUseCase struct {
	repo repository.MaterialRepository
	now  func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Create crea un material activo. El código es único.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.NewValidationError("code", "requerido")
	}
	if err := checkNonNegative("price", in.Price); err != nil {
		return nil, err
	}
	if err := checkNonNegative("min_stock", in.MinStock); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = inventory.DefaultCurrency
	}
	now := uc.now()
	material := &entity.Material{
		ID:         uuid.New().String(),
		Code:       code,
		Name:       in.Name,
		Unit:       in.Unit,
		Price:      fixed.Money(in.Price),
		Currency:   currency,
		MinStock:   fixed.Quantity(in.MinStock),
		CategoryID: in.CategoryID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// GetByID obtiene un material por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, &domain.NotFoundError{Resource: "material", ID: id}
	}
	return toMaterialResponse(material), nil
}

// Update actualiza un material. Solo se modifican los campos presentes.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	material, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, &domain.NotFoundError{Resource: "material", ID: id}
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, domain.NewValidationError("code", "requerido")
		}
		if code != material.Code {
			other, err := uc.repo.GetByCode(ctx, code)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
			material.Code = code
		}
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Unit != nil {
		material.Unit = *in.Unit
	}
	if in.Price != nil {
		if err := checkNonNegative("price", *in.Price); err != nil {
			return nil, err
		}
		material.Price = fixed.Money(*in.Price)
	}
	if in.Currency != nil {
		material.Currency = strings.ToUpper(*in.Currency)
	}
	if in.MinStock != nil {
		if err := checkNonNegative("min_stock", *in.MinStock); err != nil {
			return nil, err
		}
		material.MinStock = fixed.Quantity(*in.MinStock)
	}
	if in.CategoryID != nil {
		material.CategoryID = *in.CategoryID
	}
	if in.IsActive != nil {
		material.IsActive = *in.IsActive
	}
	material.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, material); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// List lista materiales por código con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func checkNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	return nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:         m.ID,
		Code:       m.Code,
		Name:       m.Name,
		Unit:       m.Unit,
		Price:      m.Price.StringFixed(fixed.MoneyScale),
		Currency:   m.Currency,
		MinStock:   m.MinStock.StringFixed(fixed.QuantityScale),
		CategoryID: m.CategoryID,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
