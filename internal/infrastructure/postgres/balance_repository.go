package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

const balanceColumns = `warehouse_id, material_id, quantity, reserved_quantity, last_updated`

// BalanceRepo saldos sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, warehouseID, materialID string) (*entity.Balance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (warehouse_id, material_id, quantity, reserved_quantity, last_updated)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (warehouse_id, material_id) DO NOTHING`, warehouseID, materialID)
	if err != nil {
		return nil, classifyError("ensure balance", err)
	}

	query := `SELECT ` + balanceColumns + `
		FROM stock_balances WHERE warehouse_id = $1 AND material_id = $2
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, warehouseID, materialID))
	if err != nil {
		return nil, classifyError("get balance for update", err)
	}
	return b, nil
}

// ApplyDelta suma delta con redondeo a 4 decimales en la misma sentencia.
func (r *BalanceRepo) ApplyDelta(ctx context.Context, warehouseID, materialID string, delta decimal.Decimal, at time.Time) (*entity.Balance, error) {
	query := `
		UPDATE stock_balances
		SET quantity = ROUND(quantity + $3, 4), last_updated = $4
		WHERE warehouse_id = $1 AND material_id = $2
		RETURNING ` + balanceColumns
	b, err := scanBalance(r.q.QueryRow(ctx, query, warehouseID, materialID, inventory.Quantity(delta), at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, classifyError("apply delta", fmt.Errorf("saldo %s/%s no bloqueado", warehouseID, materialID))
		}
		return nil, classifyError("apply delta", err)
	}
	return b, nil
}

func (r *BalanceRepo) Get(ctx context.Context, warehouseID, materialID string) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE warehouse_id = $1 AND material_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, warehouseID, materialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyError("get balance", err)
	}
	return b, nil
}

func (r *BalanceRepo) List(ctx context.Context, filter repository.BalanceFilter) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE 1 = 1`
	args := []any{}
	pos := 1
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	if filter.MaterialID != "" {
		query += fmt.Sprintf(" AND material_id = $%d", pos)
		args = append(args, filter.MaterialID)
		pos++
	}
	query += " ORDER BY warehouse_id, material_id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError("list balances", err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, classifyError("scan balance", err)
		}
		list = append(list, b)
	}
	return list, classifyError("list balances", rows.Err())
}

// ListBelowMinStock pares con disponible < min_stock, menor disponible primero.
func (r *BalanceRepo) ListBelowMinStock(ctx context.Context) ([]repository.LowStockItem, error) {
	query := `
		SELECT m.id, m.code, m.name, sb.warehouse_id, m.min_stock, sb.quantity,
		       sb.quantity - sb.reserved_quantity AS available
		FROM stock_balances sb
		JOIN materials m ON m.id = sb.material_id
		WHERE (sb.quantity - sb.reserved_quantity) < m.min_stock
		ORDER BY available ASC, m.code ASC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, classifyError("list low stock", err)
	}
	defer rows.Close()

	var items []repository.LowStockItem
	for rows.Next() {
		var item repository.LowStockItem
		if err := rows.Scan(
			&item.MaterialID, &item.MaterialCode, &item.MaterialName, &item.WarehouseID,
			&item.MinStock, &item.Quantity, &item.Available,
		); err != nil {
			return nil, classifyError("scan low stock", err)
		}
		items = append(items, item)
	}
	return items, classifyError("list low stock", rows.Err())
}

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	if err := row.Scan(&b.WarehouseID, &b.MaterialID, &b.Quantity, &b.ReservedQuantity, &b.LastUpdated); err != nil {
		return nil, err
	}
	return &b, nil
}
