package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

// ReviseMovement reemplaza cabecera y líneas de un documento ya registrado.
// El efecto anterior se compensa con registros reversal y las líneas nuevas se postean con kind edit;
// nunca se modifica ni borra un registro existente del kardex.
func (uc *MovementUseCase) ReviseMovement(ctx context.Context, id string, in MovementInput) (*entity.Document, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "requerido")
	}
	if in.Type != "" && !entity.IsValidDocumentType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser receipt o issue")
	}
	items, err := uc.buildItems(ctx, in)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(in)
	if err != nil {
		return nil, err
	}

	var revised *entity.Document
	err = uc.run(ctx, "revise_movement", func(tx txRepos) error {
		current, err := tx.documents.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return &domain.NotFoundError{Resource: "documento", ID: id}
		}
		if in.Type != "" && in.Type != current.Type {
			return domain.NewValidationError("type", "no se puede cambiar el tipo de un documento")
		}

		exists, err := tx.documents.NumberExists(ctx, current.Type, header.DocumentNumber, current.ID)
		if err != nil {
			return err
		}
		if exists {
			return &domain.DuplicateDocumentNumberError{DocumentType: current.Type, DocumentNumber: header.DocumentNumber}
		}

		// copia por intento: un reintento vuelve a partir de las líneas validadas
		newItems := make([]entity.DocumentItem, len(items))
		copy(newItems, items)
		newItems = uc.assignItemIDs(current.ID, newItems)

		keys := append(itemKeys(current.Items), itemKeys(newItems)...)
		locked, err := lockPairs(ctx, tx.balances, keys)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		if err := uc.compensate(ctx, tx, locked, current, now, in.UserID); err != nil {
			return err
		}
		if err := tx.documents.DeleteItems(ctx, current.ID); err != nil {
			return err
		}

		if current.Type == entity.DocumentTypeIssue {
			if err := checkAvailability(locked, newItems); err != nil {
				return err
			}
		}

		next := *current
		next.DocumentNumber = header.DocumentNumber
		if !header.Date.IsZero() {
			next.Date = header.Date
		}
		next.CounterpartyID = header.CounterpartyID
		next.Currency = header.Currency
		next.Notes = header.Notes
		next.Items = newItems
		next.TotalAmount = totalOf(newItems)
		next.UpdatedAt = now

		if err := uc.postLines(ctx, tx, locked, &next, entity.MovementKindEdit, now, in.UserID); err != nil {
			return err
		}
		if err := tx.documents.UpdateHeader(ctx, &next); err != nil {
			return err
		}
		if err := tx.documents.CreateItems(ctx, next.ID, next.Items); err != nil {
			return err
		}
		revised = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("document_id", revised.ID).
		Str("type", revised.Type).
		Str("total_amount", revised.TotalAmount.StringFixed(inventory.MoneyScale)).
		Int("lines", len(revised.Items)).
		Msg("documento editado")
	return revised, nil
}

// DeleteMovement compensa el efecto del documento y lo elimina. Los registros del kardex
// (originales y reversal) permanecen y siguen referenciando el ID eliminado.
// No verifica disponibilidad: eliminar una entrada cuyo stock ya salió deja el saldo negativo.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, id, userID string) error {
	if id == "" {
		return domain.NewValidationError("id", "requerido")
	}
	var deleted *entity.Document
	err := uc.run(ctx, "delete_movement", func(tx txRepos) error {
		current, err := tx.documents.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return &domain.NotFoundError{Resource: "documento", ID: id}
		}
		locked, err := lockPairs(ctx, tx.balances, itemKeys(current.Items))
		if err != nil {
			return err
		}
		if err := uc.compensate(ctx, tx, locked, current, uc.clock.Now(), userID); err != nil {
			return err
		}
		if err := tx.documents.Delete(ctx, current.ID); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Debug().
		Str("document_id", deleted.ID).
		Str("type", deleted.Type).
		Int("lines", len(deleted.Items)).
		Msg("documento eliminado")
	return nil
}
