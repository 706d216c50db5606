package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, code, name, unit, price, currency, min_stock, category_id, is_active, created_at, updated_at`

// MaterialRepo implementación del puerto MaterialRepository sobre PostgreSQL.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Acepta pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste un material. Código repetido -> ErrDuplicate.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `INSERT INTO materials (` + materialColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, nullString(m.Unit), m.Price, m.Currency, m.MinStock, nullString(m.CategoryID),
		m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return classifyError("insert material", err)
	}
	return nil
}

func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
}

func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materials WHERE code = $1`, code)
}

func (r *MaterialRepo) getOne(ctx context.Context, query string, arg string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyError("get material", err)
	}
	return m, nil
}

func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materials
		SET code = $2, name = $3, unit = $4, price = $5, currency = $6, min_stock = $7,
		    category_id = $8, is_active = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, nullString(m.Unit), m.Price, m.Currency, m.MinStock, nullString(m.CategoryID),
		m.IsActive, m.UpdatedAt,
	)
	if err != nil {
		return classifyError("update material", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "material", ID: m.ID}
	}
	return nil
}

func (r *MaterialRepo) List(ctx context.Context, limit, offset int) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classifyError("list materials", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, classifyError("scan material", err)
		}
		list = append(list, m)
	}
	return list, classifyError("list materials", rows.Err())
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	var unit, category *string
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &unit, &m.Price, &m.Currency, &m.MinStock, &category,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Unit = derefString(unit)
	m.CategoryID = derefString(category)
	return &m, nil
}
