package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// WarehouseRepo bodegas en memoria. Los datos de referencia no participan de las transacciones.
type WarehouseRepo struct {
	store *Store
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[w.ID]; ok {
		return domain.ErrDuplicate
	}
	r.store.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[w.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.store.mu.RLock()
	all := make([]entity.Warehouse, 0, len(r.store.warehouses))
	for _, w := range r.store.warehouses {
		all = append(all, w)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	all = page(all, limit, offset)
	out := make([]*entity.Warehouse, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

// MaterialRepo materiales en memoria. El código es único.
type MaterialRepo struct {
	store *Store
}

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.store.materials {
		if other.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	r.store.materials[m.ID] = *m
	return nil
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MaterialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, m := range r.store.materials {
		if m.Code == code {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.materials[m.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.store.materials {
		if id != m.ID && other.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	r.store.materials[m.ID] = *m
	return nil
}

func (r *MaterialRepo) List(_ context.Context, limit, offset int) ([]*entity.Material, error) {
	r.store.mu.RLock()
	all := make([]entity.Material, 0, len(r.store.materials))
	for _, m := range r.store.materials {
		all = append(all, m)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	all = page(all, limit, offset)
	out := make([]*entity.Material, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}
