package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// retryAfterSeconds valor de Retry-After en conflictos de concurrencia.
const retryAfterSeconds = "1"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// bindJSON decodifica el body y valida las etiquetas validate. Devuelve ValidationError.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError("body", "cuerpo inválido: "+err.Error())
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidationError(fieldPath(verrs[0]), verrs[0].Tag())
		}
		return domain.NewValidationError("", err.Error())
	}
	return nil
}

// fieldPath "MovementRequest.items[0].material_id" -> "items[0].material_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// pathID lee :id y exige UUID.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if id == "" {
		return "", domain.NewValidationError("id", "requerido")
	}
	if err := uuid.Validate(id); err != nil {
		return "", domain.NewValidationError("id", "debe ser UUID")
	}
	return id, nil
}

// queryID lee un filtro opcional de la query; si viene, debe ser UUID.
func queryID(c *fiber.Ctx, key string) (string, error) {
	id := c.Query(key)
	if id == "" {
		return "", nil
	}
	if err := uuid.Validate(id); err != nil {
		return "", domain.NewValidationError(key, "debe ser UUID")
	}
	return id, nil
}

// page lee limit/offset de la query; el caso de uso aplica defaults y tope.
func page(c *fiber.Ctx) (int, int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	if p.Limit > 1000 {
		p.Limit = 1000
	}
	return p.Limit, p.Offset
}

// writeError traduce errores de dominio a status HTTP y cuerpo dto.ErrorResponse.
//
//	ValidationError              → 400
//	NotFoundError                → 404
//	InsufficientStockError       → 409 (con detalle del faltante)
//	duplicado                    → 409
//	ConcurrencyError             → 503 + Retry-After
//	PersistenceError             → 503
//	otro                         → 500
func writeError(c *fiber.Ctx, err error) error {
	var (
		verr  *domain.ValidationError
		stock *domain.InsufficientStockError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: verr.Error(),
			Details: dto.FieldErrorDetail{Field: verr.Field, Reason: verr.Reason},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stock.Error(),
			Details: dto.ShortfallDetail{
				MaterialID:  stock.MaterialID,
				WarehouseID: stock.WarehouseID,
				Requested:   stock.Requested.StringFixed(4),
				Available:   stock.Available.StringFixed(4),
				Shortfall:   stock.Shortfall().StringFixed(4),
			},
		})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrency):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente"})
	case errors.Is(err, domain.ErrPersistence):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible, intente más tarde"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
