package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// LedgerFilter filtros del kardex. Campos vacíos o nil no filtran.
type LedgerFilter struct {
	WarehouseID string
	MaterialID  string
	Kind        string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// LedgerRepository puerto del kardex. Solo inserción: no existe update ni delete.
type LedgerRepository interface {
	// Append inserta el registro y le asigna ID.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// Query devuelve los registros que cumplen el filtro, del más reciente al más antiguo.
	Query(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, error)
	// ListByReference devuelve los registros de un documento en orden de inserción.
	ListByReference(ctx context.Context, docType, docID string) ([]*entity.LedgerEntry, error)
}
