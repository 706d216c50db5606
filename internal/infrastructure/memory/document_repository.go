package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DocumentRepo documentos en memoria.
type DocumentRepo struct {
	store *Store
	tx    *memTx
}

func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		if _, exists := tx.document(doc.ID); exists {
			return &domain.PersistenceError{Op: "create document", Err: domain.ErrDuplicate}
		}
		tx.stageDoc(cloneDocument(doc))
		return nil
	})
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	if r.tx != nil {
		doc, ok := r.tx.document(id)
		if !ok {
			return nil, nil
		}
		return cloneDocument(doc), nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return cloneDocument(r.store.documents[id]), nil
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.store.scope(r.tx, func(tx *memTx) error {
		if err := tx.lock(ctx, documentLockKey(id)); err != nil {
			return err
		}
		doc, ok := tx.document(id)
		if ok {
			out = cloneDocument(doc)
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) List(_ context.Context, docType string, limit, offset int) ([]*entity.Document, error) {
	r.store.mu.RLock()
	docs := make([]*entity.Document, 0, len(r.store.documents))
	for _, d := range r.store.documents {
		if docType != "" && d.Type != docType {
			continue
		}
		docs = append(docs, cloneDocument(d))
	}
	r.store.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.After(docs[j].Date)
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return page(docs, limit, offset), nil
}

func (r *DocumentRepo) NumberExists(_ context.Context, docType, number, excludeID string) (bool, error) {
	seen := map[string]bool{}
	if r.tx != nil {
		for id, d := range r.tx.docs {
			seen[id] = true
			if d != nil && id != excludeID && d.Type == docType && d.DocumentNumber == number {
				return true, nil
			}
		}
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for id, d := range r.store.documents {
		if seen[id] || id == excludeID {
			continue
		}
		if d.Type == docType && d.DocumentNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *DocumentRepo) UpdateHeader(_ context.Context, doc *entity.Document) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		current, ok := tx.document(doc.ID)
		if !ok {
			return &domain.NotFoundError{Resource: "documento", ID: doc.ID}
		}
		next := cloneDocument(current)
		next.DocumentNumber = doc.DocumentNumber
		next.Date = doc.Date
		next.CounterpartyID = doc.CounterpartyID
		next.Currency = doc.Currency
		next.Notes = doc.Notes
		next.TotalAmount = doc.TotalAmount
		next.UpdatedAt = doc.UpdatedAt
		tx.stageDoc(next)
		return nil
	})
}

func (r *DocumentRepo) DeleteItems(_ context.Context, documentID string) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		current, ok := tx.document(documentID)
		if !ok {
			return &domain.NotFoundError{Resource: "documento", ID: documentID}
		}
		next := cloneDocument(current)
		next.Items = nil
		tx.stageDoc(next)
		return nil
	})
}

func (r *DocumentRepo) CreateItems(_ context.Context, documentID string, items []entity.DocumentItem) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		current, ok := tx.document(documentID)
		if !ok {
			return &domain.NotFoundError{Resource: "documento", ID: documentID}
		}
		next := cloneDocument(current)
		next.Items = append(next.Items, items...)
		tx.stageDoc(next)
		return nil
	})
}

func (r *DocumentRepo) Delete(_ context.Context, id string) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		if _, ok := tx.document(id); !ok {
			return &domain.NotFoundError{Resource: "documento", ID: id}
		}
		tx.stageDelete(id)
		return nil
	})
}
