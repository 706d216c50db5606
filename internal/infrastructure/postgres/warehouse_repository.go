package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

const warehouseColumns = `id, name, address, manager_name, capacity, capacity_unit, created_at, updated_at`

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `INSERT INTO warehouses (` + warehouseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.Name, nullString(w.Address), nullString(w.ManagerName), w.Capacity, nullString(w.CapacityUnit),
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return classifyError("insert warehouse", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID; nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRow(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyError("get warehouse", err)
	}
	return w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $2, address = $3, manager_name = $4, capacity = $5, capacity_unit = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		w.ID, w.Name, nullString(w.Address), nullString(w.ManagerName), w.Capacity, nullString(w.CapacityUnit), w.UpdatedAt,
	)
	if err != nil {
		return classifyError("update warehouse", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "bodega", ID: w.ID}
	}
	return nil
}

// List lista bodegas por nombre con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classifyError("list warehouses", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, classifyError("scan warehouse", err)
		}
		list = append(list, w)
	}
	return list, classifyError("list warehouses", rows.Err())
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	var address, manager, unit *string
	if err := row.Scan(&w.ID, &w.Name, &address, &manager, &w.Capacity, &unit, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Address = derefString(address)
	w.ManagerName = derefString(manager)
	w.CapacityUnit = derefString(unit)
	return &w, nil
}
