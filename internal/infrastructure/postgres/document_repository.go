package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, doc_type, document_number, doc_date, counterparty_id, currency, total_amount,
	notes, created_by, created_at, updated_at`

const itemColumns = `id, document_id, line_no, material_id, warehouse_id, qty, unit_price, currency, total_price, notes`

// DocumentRepo documentos de entrada/salida sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste cabecera y líneas. Un número repetido para el mismo tipo devuelve DuplicateDocumentNumberError.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.Type, doc.DocumentNumber, doc.Date, nullString(doc.CounterpartyID), doc.Currency,
		doc.TotalAmount, nullString(doc.Notes), nullString(doc.CreatedBy), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateDocumentNumberError{DocumentType: doc.Type, DocumentNumber: doc.DocumentNumber}
		}
		return classifyError("insert document", err)
	}
	return r.CreateItems(ctx, doc.ID, doc.Items)
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas quedan protegidas porque solo se modifican con ese bloqueo.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

func (r *DocumentRepo) get(ctx context.Context, query, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyError("get document", err)
	}
	items, err := r.items(ctx, []string{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Items = items[doc.ID]
	return doc, nil
}

func (r *DocumentRepo) List(ctx context.Context, docType string, limit, offset int) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ($1 = '' OR doc_type = $1)
		ORDER BY doc_date DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, docType, limit, offset)
	if err != nil {
		return nil, classifyError("list documents", err)
	}
	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, classifyError("scan document", err)
		}
		docs = append(docs, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classifyError("list documents", err)
	}
	if len(docs) == 0 {
		return docs, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		d.Items = items[d.ID]
	}
	return docs, nil
}

func (r *DocumentRepo) NumberExists(ctx context.Context, docType, number, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE doc_type = $1 AND document_number = $2 AND ($3 = '' OR id::text <> $3)
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, docType, number, excludeID).Scan(&exists); err != nil {
		return false, classifyError("document number exists", err)
	}
	return exists, nil
}

func (r *DocumentRepo) UpdateHeader(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET document_number = $2, doc_date = $3, counterparty_id = $4, currency = $5,
		    total_amount = $6, notes = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		doc.ID, doc.DocumentNumber, doc.Date, nullString(doc.CounterpartyID), doc.Currency,
		doc.TotalAmount, nullString(doc.Notes), doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateDocumentNumberError{DocumentType: doc.Type, DocumentNumber: doc.DocumentNumber}
		}
		return classifyError("update document", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "documento", ID: doc.ID}
	}
	return nil
}

func (r *DocumentRepo) DeleteItems(ctx context.Context, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, documentID); err != nil {
		return classifyError("delete document items", err)
	}
	return nil
}

func (r *DocumentRepo) CreateItems(ctx context.Context, documentID string, items []entity.DocumentItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`INSERT INTO document_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, documentID, it.LineNo, it.MaterialID, it.WarehouseID, it.Qty, it.UnitPrice, it.Currency,
			it.TotalPrice, nullString(it.Notes),
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return classifyError("insert document item", err)
		}
	}
	return classifyError("insert document items", br.Close())
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if err := r.DeleteItems(ctx, id); err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return classifyError("delete document", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "documento", ID: id}
	}
	return nil
}

// items líneas de los documentos indicados, agrupadas por documento y en orden de línea.
func (r *DocumentRepo) items(ctx context.Context, documentIDs []string) (map[string][]entity.DocumentItem, error) {
	query := `SELECT ` + itemColumns + ` FROM document_items
		WHERE document_id = ANY($1::uuid[]) ORDER BY document_id, line_no`
	rows, err := r.q.Query(ctx, query, documentIDs)
	if err != nil {
		return nil, classifyError("list document items", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.DocumentItem, len(documentIDs))
	for rows.Next() {
		var it entity.DocumentItem
		var notes *string
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.LineNo, &it.MaterialID, &it.WarehouseID,
			&it.Qty, &it.UnitPrice, &it.Currency, &it.TotalPrice, &notes); err != nil {
			return nil, classifyError("scan document item", err)
		}
		it.Notes = derefString(notes)
		out[it.DocumentID] = append(out[it.DocumentID], it)
	}
	return out, classifyError("list document items", rows.Err())
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var counterparty, notes, createdBy *string
	if err := row.Scan(&d.ID, &d.Type, &d.DocumentNumber, &d.Date, &counterparty, &d.Currency, &d.TotalAmount,
		&notes, &createdBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.CounterpartyID = derefString(counterparty)
	d.Notes = derefString(notes)
	d.CreatedBy = derefString(createdBy)
	return &d, nil
}
