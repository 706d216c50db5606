package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DocumentRepository puerto de documentos de entrada/salida y sus líneas.
type DocumentRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID devuelve el documento con sus líneas; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, docType string, limit, offset int) ([]*entity.Document, error)
	// NumberExists indica si el número ya está usado por otro documento del mismo tipo.
	NumberExists(ctx context.Context, docType, number, excludeID string) (bool, error)
	// UpdateHeader sobrescribe número, fecha, contraparte, moneda, notas y total.
	UpdateHeader(ctx context.Context, doc *entity.Document) error
	DeleteItems(ctx context.Context, documentID string) error
	CreateItems(ctx context.Context, documentID string, items []entity.DocumentItem) error
	// Delete elimina cabecera y líneas.
	Delete(ctx context.Context, id string) error
}
