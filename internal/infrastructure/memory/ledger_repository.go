package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// LedgerRepo kardex en memoria. Solo inserción.
type LedgerRepo struct {
	store *Store
	tx    *memTx
}

// Append asigna el ID al momento de insertar, como un BIGSERIAL: un rollback deja huecos.
func (r *LedgerRepo) Append(_ context.Context, entry *entity.LedgerEntry) error {
	return r.store.scope(r.tx, func(tx *memTx) error {
		entry.ID = r.store.nextEntryID.Add(1)
		tx.entries = append(tx.entries, *entry)
		return nil
	})
}

func (r *LedgerRepo) Query(_ context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	r.store.mu.RLock()
	matched := make([]entity.LedgerEntry, 0)
	for _, e := range r.store.ledger {
		if filter.WarehouseID != "" && e.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.MaterialID != "" && e.MaterialID != filter.MaterialID {
			continue
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if filter.From != nil && e.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Timestamp.After(*filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})
	return pointers(page(matched, filter.Limit, filter.Offset)), nil
}

func (r *LedgerRepo) ListByReference(_ context.Context, docType, docID string) ([]*entity.LedgerEntry, error) {
	r.store.mu.RLock()
	var matched []entity.LedgerEntry
	for _, e := range r.store.ledger {
		if e.ReferenceDocType == docType && e.ReferenceDocID == docID {
			matched = append(matched, e)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return pointers(matched), nil
}

func pointers(entries []entity.LedgerEntry) []*entity.LedgerEntry {
	out := make([]*entity.LedgerEntry, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out
}
