package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, occurred_at, warehouse_id, material_id, kind, qty_change, unit_price, currency,
	total_price, reference_doc_type, reference_doc_id, remarks, created_by`

// LedgerRepo kardex sobre PostgreSQL (usable con pool o tx). Solo INSERT y SELECT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el registro; el ID lo asigna la secuencia.
func (r *LedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (occurred_at, warehouse_id, material_id, kind, qty_change, unit_price, currency,
			total_price, reference_doc_type, reference_doc_id, remarks, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		entry.Timestamp, entry.WarehouseID, entry.MaterialID, entry.Kind, entry.QtyChange,
		entry.UnitPrice, nullString(entry.Currency), entry.TotalPrice,
		entry.ReferenceDocType, nullString(entry.ReferenceDocID), nullString(entry.Remarks), nullString(entry.CreatedBy),
	).Scan(&entry.ID)
	if err != nil {
		return classifyError("append ledger entry", err)
	}
	return nil
}

// Query devuelve registros filtrados del más reciente al más antiguo.
func (r *LedgerRepo) Query(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE 1 = 1`
	args := []any{}
	pos := 1
	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, v)
		pos++
	}
	if filter.WarehouseID != "" {
		add("warehouse_id = $%d", filter.WarehouseID)
	}
	if filter.MaterialID != "" {
		add("material_id = $%d", filter.MaterialID)
	}
	if filter.Kind != "" {
		add("kind = $%d", filter.Kind)
	}
	if filter.From != nil {
		add("occurred_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("occurred_at <= $%d", *filter.To)
	}
	query += " ORDER BY occurred_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError("query ledger", err)
	}
	return collectEntries(rows)
}

// ListByReference registros de un documento en orden de inserción.
func (r *LedgerRepo) ListByReference(ctx context.Context, docType, docID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM stock_ledger
		WHERE reference_doc_type = $1 AND reference_doc_id = $2
		ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, docType, docID)
	if err != nil {
		return nil, classifyError("list ledger by reference", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var currency, refID, remarks, createdBy *string
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.WarehouseID, &e.MaterialID, &e.Kind, &e.QtyChange, &e.UnitPrice, &currency,
			&e.TotalPrice, &e.ReferenceDocType, &refID, &remarks, &createdBy,
		); err != nil {
			return nil, classifyError("scan ledger entry", err)
		}
		e.Currency = derefString(currency)
		e.ReferenceDocID = derefString(refID)
		e.Remarks = derefString(remarks)
		e.CreatedBy = derefString(createdBy)
		list = append(list, &e)
	}
	return list, classifyError("query ledger", rows.Err())
}
