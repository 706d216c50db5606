package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// 3.3333 * 2.50 = 8.33325 -> half-up a 2 decimales = 8.33
func TestLineTotal_RedondeoHalfUp(t *testing.T) {
	total := inventory.LineTotal(dec("3.3333"), dec("2.50"))
	assert.Equal(t, "8.33", total.StringFixed(2))
}

func TestLineTotal_MitadSubeAlejandoseDeCero(t *testing.T) {
	cases := []struct {
		qty, price, want string
	}{
		{"1.0005", "10", "10.01"}, // 10.005 -> 10.01
		{"0.0001", "0.50", "0.00"},
		{"2", "1.005", "2.02"}, // el precio se cuantiza primero: 1.005 -> 1.01
		{"100", "0", "0.00"},
	}
	for _, c := range cases {
		got := inventory.LineTotal(dec(c.qty), dec(c.price))
		assert.Equal(t, c.want, got.StringFixed(2), "qty=%s price=%s", c.qty, c.price)
	}
}

func TestQuantity_CuantizaACuatroDecimales(t *testing.T) {
	assert.Equal(t, "1.2346", inventory.Quantity(dec("1.23455")).StringFixed(4))
	assert.Equal(t, "-1.2346", inventory.Quantity(dec("-1.23455")).StringFixed(4))
	assert.Equal(t, "10.0000", inventory.Quantity(dec("10")).StringFixed(4))
}

func TestMoney_CuantizaADosDecimales(t *testing.T) {
	assert.Equal(t, "0.13", inventory.Money(dec("0.125")).StringFixed(2))
	assert.Equal(t, "-0.13", inventory.Money(dec("-0.125")).StringFixed(2))
}

func TestSigned_SegunTipoDeDocumento(t *testing.T) {
	assert.True(t, inventory.Signed(entity.DocumentTypeReceipt, dec("5")).Equal(dec("5")))
	assert.True(t, inventory.Signed(entity.DocumentTypeIssue, dec("5")).Equal(dec("-5")))
}

// Sumar 0.1 mil veces debe dar exactamente 100 (sin deriva de punto flotante).
func TestSum_SinDeriva(t *testing.T) {
	amounts := make([]decimal.Decimal, 1000)
	for i := range amounts {
		amounts[i] = dec("0.10")
	}
	assert.Equal(t, "100.00", inventory.Sum(amounts...).StringFixed(2))
}

func TestParseQuantity(t *testing.T) {
	q, err := inventory.ParseQuantity("qty", " 3.33335 ")
	require.NoError(t, err)
	assert.Equal(t, "3.3334", q.StringFixed(4))

	_, err = inventory.ParseQuantity("qty", "abc")
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "qty", vErr.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.ParseQuantity("qty", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseMoney(t *testing.T) {
	m, err := inventory.ParseMoney("unit_price", "2.505")
	require.NoError(t, err)
	assert.Equal(t, "2.51", m.StringFixed(2))
}

func TestCheckQuantityYMoney_Limites(t *testing.T) {
	assert.NoError(t, inventory.CheckQuantity("qty", dec("99999999999999.9999")))
	assert.NoError(t, inventory.CheckQuantity("qty", dec("-99999999999999.9999")))
	assert.ErrorIs(t, inventory.CheckQuantity("qty", dec("100000000000000")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.CheckQuantity("qty", dec("-123456789012345678.5")), domain.ErrInvalidInput)

	assert.NoError(t, inventory.CheckMoney("price", dec("9999999999999999.99")))
	err := inventory.CheckMoney("price", dec("10000000000000000"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}
