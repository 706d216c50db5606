package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Paginación de consultas.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// StockQueryUseCase lecturas sin bloqueo de saldos, kardex y documentos.
type StockQueryUseCase struct {
	balanceRepo  repository.BalanceRepository
	ledgerRepo   repository.LedgerRepository
	documentRepo repository.DocumentRepository
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(
	balanceRepo repository.BalanceRepository,
	ledgerRepo repository.LedgerRepository,
	documentRepo repository.DocumentRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		documentRepo: documentRepo,
	}
}

// QueryBalance saldos actuales, opcionalmente filtrados por bodega y/o material.
func (uc *StockQueryUseCase) QueryBalance(ctx context.Context, filter repository.BalanceFilter) ([]*entity.Balance, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.balanceRepo.List(ctx, filter)
}

// QueryLedger registros del kardex del más reciente al más antiguo.
func (uc *StockQueryUseCase) QueryLedger(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	if filter.Kind != "" && !entity.IsValidMovementKind(filter.Kind) {
		return nil, domain.NewValidationError("kind", "tipo de movimiento desconocido: "+filter.Kind)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.ledgerRepo.Query(ctx, filter)
}

// LowStock pares cuyo disponible está por debajo del stock mínimo del material.
func (uc *StockQueryUseCase) LowStock(ctx context.Context) ([]repository.LowStockItem, error) {
	return uc.balanceRepo.ListBelowMinStock(ctx)
}

// GetMovement documento con sus líneas. docType vacío acepta cualquier tipo.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, docType, id string) (*entity.Document, error) {
	doc, err := uc.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || (docType != "" && doc.Type != docType) {
		return nil, &domain.NotFoundError{Resource: "documento", ID: id}
	}
	return doc, nil
}

// ListMovements documentos de un tipo, más recientes primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, docType string, limit, offset int) ([]*entity.Document, error) {
	if docType != "" && !entity.IsValidDocumentType(docType) {
		return nil, domain.NewValidationError("type", "debe ser receipt o issue")
	}
	limit, offset = normalizePage(limit, offset)
	return uc.documentRepo.List(ctx, docType, limit, offset)
}

// MovementHistory registros del kardex que referencian el documento, incluidos reversal y edit.
// Funciona también para documentos ya eliminados.
func (uc *StockQueryUseCase) MovementHistory(ctx context.Context, docType, id string) ([]*entity.LedgerEntry, error) {
	if !entity.IsValidDocumentType(docType) {
		return nil, domain.NewValidationError("type", "debe ser receipt o issue")
	}
	ref := entity.ReferenceDocReceipt
	if docType == entity.DocumentTypeIssue {
		ref = entity.ReferenceDocIssue
	}
	return uc.ledgerRepo.ListByReference(ctx, ref, id)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
