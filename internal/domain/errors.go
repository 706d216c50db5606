package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConcurrency       = errors.New("conflicto de concurrencia, reintentar la operación")
	ErrPersistence       = errors.New("fallo de persistencia")
)

// ValidationError entrada vacía o mal formada. Field indica el campo afectado (puede ser vacío).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entrada inválida: %s", e.Reason)
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError recurso inexistente (documento, material o bodega).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError detalla el faltante de una línea de salida.
type InsufficientStockError struct {
	MaterialID  string
	WarehouseID string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

// Shortfall cantidad que falta para cubrir lo solicitado.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para material %s en bodega %s: disponible %s, solicitado %s, faltante %s",
		e.MaterialID, e.WarehouseID, e.Available.String(), e.Requested.String(), e.Shortfall().String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// DuplicateDocumentNumberError el número de documento ya existe para ese tipo.
type DuplicateDocumentNumberError struct {
	DocumentType   string
	DocumentNumber string
}

func (e *DuplicateDocumentNumberError) Error() string {
	return fmt.Sprintf("el documento %s %q ya existe", e.DocumentType, e.DocumentNumber)
}

func (e *DuplicateDocumentNumberError) Unwrap() error { return ErrDuplicate }

// ConcurrencyError timeout de espera de bloqueo, deadlock o fallo de serialización.
// Es reintentable: el llamador debe repetir la operación completa.
type ConcurrencyError struct {
	Op  string
	Err error
}

func (e *ConcurrencyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrConcurrency.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrConcurrency.Error(), e.Err)
}

// Unwrap expone tanto el sentinel como la causa.
func (e *ConcurrencyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConcurrency}
	}
	return []error{ErrConcurrency, e.Err}
}

// PersistenceError fallo de almacenamiento (reintentable).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrPersistence.Error(), e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Err}
}

// IsRetryable indica si el error es de infraestructura y la operación puede repetirse completa.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrency) || errors.Is(err, ErrPersistence)
}

// IsBusiness indica si el error es una regla de negocio (no se reintenta).
func IsBusiness(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrForbidden)
}
