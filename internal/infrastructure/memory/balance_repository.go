package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// BalanceRepo saldos en memoria. Con tx != nil opera dentro de esa transacción.
type BalanceRepo struct {
	store *Store
	tx    *memTx
}

func (r *BalanceRepo) GetForUpdate(ctx context.Context, warehouseID, materialID string) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.store.scope(r.tx, func(tx *memTx) error {
		if err := tx.lock(ctx, pairLockKey(warehouseID, materialID)); err != nil {
			return err
		}
		key := entity.StockKey{WarehouseID: warehouseID, MaterialID: materialID}
		b, ok := tx.balance(key)
		if !ok {
			b = entity.Balance{
				WarehouseID:      warehouseID,
				MaterialID:       materialID,
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
			}
			tx.balances[key] = b
		}
		out = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BalanceRepo) ApplyDelta(ctx context.Context, warehouseID, materialID string, delta decimal.Decimal, at time.Time) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.store.scope(r.tx, func(tx *memTx) error {
		lockKey := pairLockKey(warehouseID, materialID)
		if r.tx == nil {
			if err := tx.lock(ctx, lockKey); err != nil {
				return err
			}
		}
		if !tx.held[lockKey] {
			return &domain.PersistenceError{Op: "apply delta", Err: errNotLocked}
		}
		key := entity.StockKey{WarehouseID: warehouseID, MaterialID: materialID}
		b, ok := tx.balance(key)
		if !ok {
			b = entity.Balance{WarehouseID: warehouseID, MaterialID: materialID, ReservedQuantity: decimal.Zero}
		}
		b.Quantity = inventory.Quantity(b.Quantity.Add(inventory.Quantity(delta)))
		b.LastUpdated = at
		tx.balances[key] = b
		out = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BalanceRepo) Get(_ context.Context, warehouseID, materialID string) (*entity.Balance, error) {
	key := entity.StockKey{WarehouseID: warehouseID, MaterialID: materialID}
	if r.tx != nil {
		if b, ok := r.tx.balance(key); ok {
			return &b, nil
		}
		return nil, nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.balances[key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BalanceRepo) List(_ context.Context, filter repository.BalanceFilter) ([]*entity.Balance, error) {
	r.store.mu.RLock()
	all := make([]entity.Balance, 0, len(r.store.balances))
	for _, b := range r.store.balances {
		if filter.WarehouseID != "" && b.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.MaterialID != "" && b.MaterialID != filter.MaterialID {
			continue
		}
		all = append(all, b)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Key().Less(all[j].Key()) })
	all = page(all, filter.Limit, filter.Offset)
	out := make([]*entity.Balance, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

func (r *BalanceRepo) ListBelowMinStock(_ context.Context) ([]repository.LowStockItem, error) {
	r.store.mu.RLock()
	var out []repository.LowStockItem
	for _, b := range r.store.balances {
		m, ok := r.store.materials[b.MaterialID]
		if !ok {
			continue
		}
		available := b.Available()
		if !available.LessThan(m.MinStock) {
			continue
		}
		out = append(out, repository.LowStockItem{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			MaterialName: m.Name,
			WarehouseID:  b.WarehouseID,
			MinStock:     m.MinStock,
			Quantity:     b.Quantity,
			Available:    available,
		})
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Available.Equal(out[j].Available) {
			return out[i].Available.LessThan(out[j].Available)
		}
		return out[i].MaterialCode < out[j].MaterialCode
	})
	return out, nil
}

// page aplica limit/offset sobre un slice ya ordenado. limit <= 0 = sin límite.
func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
