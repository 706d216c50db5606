package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Querier lo común entre *pgxpool.Pool y pgx.Tx; los repositorios aceptan cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Códigos SQLSTATE que se clasifican; 23505 es duplicado, la clase 22 entrada inválida,
// el resto conflicto de concurrencia.
const (
	classDataException       = "22" // 22003 fuera de rango, 22P02 texto inválido
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout agotado
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// classifyError traduce errores del driver a la taxonomía de dominio.
// Los errores de dominio pasan intactos.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsBusiness(err) || domain.IsRetryable(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ConcurrencyError{Op: op, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return &domain.ConcurrencyError{Op: op, Err: err}
		case codeUniqueViolation:
			// Solo llegan aquí los datos de referencia (materials.code). Los documentos
			// traducen 23505 a DuplicateDocumentNumberError en su repositorio.
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
		}
		if strings.HasPrefix(pgErr.Code, classDataException) {
			return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidInput, err)
		}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
