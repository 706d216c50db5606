package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Escalas de punto fijo: cantidades con 4 decimales y montos con 2.
const (
	QuantityScale int32 = 4
	MoneyScale    int32 = 2
)

// Límites de magnitud de las columnas NUMERIC(18,4) y NUMERIC(18,2):
// 14 dígitos enteros en cantidades y 16 en montos.
var (
	maxQuantity = decimal.New(1, 14)
	maxMoney    = decimal.New(1, 16)
)

// Quantity cuantiza una cantidad a 4 decimales (redondeo half-up, alejándose de cero).
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// Money cuantiza un monto a 2 decimales (redondeo half-up).
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// LineTotal = round(qty * unitPrice, 2), con qty y precio ya cuantizados.
// 3.3333 * 2.50 = 8.33325 -> 8.33
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return Money(Quantity(qty).Mul(Money(unitPrice)))
}

// CheckQuantity exige |d| < 10^14. Devuelve ValidationError sobre field.
func CheckQuantity(field string, d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(maxQuantity) {
		return domain.NewValidationError(field, "excede 14 dígitos enteros")
	}
	return nil
}

// CheckMoney exige |d| < 10^16. Devuelve ValidationError sobre field.
func CheckMoney(field string, d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return domain.NewValidationError(field, "excede 16 dígitos enteros")
	}
	return nil
}

// Signed devuelve el efecto con signo de una cantidad según el tipo de documento:
// positivo en entradas, negativo en salidas.
func Signed(documentType string, qty decimal.Decimal) decimal.Decimal {
	if documentType == entity.DocumentTypeIssue {
		return Quantity(qty).Neg()
	}
	return Quantity(qty)
}

// ParseQuantity convierte texto externo a cantidad cuantizada. Es la única conversión de entrada.
func ParseQuantity(field, s string) (decimal.Decimal, error) {
	d, err := parse(field, s)
	if err != nil {
		return decimal.Zero, err
	}
	return Quantity(d), nil
}

// ParseMoney convierte texto externo a monto cuantizado.
func ParseMoney(field, s string) (decimal.Decimal, error) {
	d, err := parse(field, s)
	if err != nil {
		return decimal.Zero, err
	}
	return Money(d), nil
}

func parse(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.NewValidationError(field, "valor vacío")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "no es un número decimal válido")
	}
	return d, nil
}

// Sum suma montos y cuantiza el resultado a 2 decimales.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Money(total)
}
