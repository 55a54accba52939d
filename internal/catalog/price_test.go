package catalog

import (
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) Value {
	t.Helper()
	v, err := Parse([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		value string
		unit  string
		want  string
	}{
		{"cents", "12345", "2", "123.45"},
		{"unit zero", "500", "0", "500"},
		{"small amount", "5", "2", "0.05"},
		{"negative", "-250", "2", "-2.50"},
		{"three digits", "1000", "3", "1.000"},
		{"already decimal", "19.99", "2", "19.99"},
		{"comma decimal", "19,99", "2", "19.99"},
		{"negative unit clamps to zero", "42", "-3", "42"},
		{"unparseable unit keeps raw", "1999", "abc", "1999"},
		{"unit above bound keeps raw", "12345", "19", "12345"},
		{"overflowing unit keeps raw", "12345", "4294967298", "12345"},
		{"unit at bound", "1", "18", "0.000000000000000001"},
		{"empty", "", "2", ""},
		{"blank", "   ", "2", ""},
		{"garbage", "12a", "2", ""},
		{"thousand separators", "1,234.56", "2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDecimal(tt.value, tt.unit))
		})
	}
}

func TestToDecimal_FractionDigitsAndInverse(t *testing.T) {
	values := []string{"0", "1", "7", "99", "100", "12345", "-876", "1000000"}
	for unit := 0; unit <= 4; unit++ {
		for _, value := range values {
			got := ToDecimal(value, strconv.Itoa(unit))

			if unit == 0 {
				assert.NotContains(t, got, ".", "value=%s unit=%d", value, unit)
			} else {
				parts := strings.SplitN(got, ".", 2)
				require.Len(t, parts, 2, "value=%s unit=%d got=%s", value, unit, got)
				assert.Len(t, parts[1], unit, "value=%s unit=%d got=%s", value, unit, got)
			}

			back := decimal.RequireFromString(got).Shift(int32(unit))
			assert.True(t, back.Equal(decimal.RequireFromString(value)), "value=%s unit=%d got=%s", value, unit, got)
		}
	}
}

func TestNormalizePriceSet_Precedence(t *testing.T) {
	src := mustParse(t, `{
		"price": "900",
		"sale_price": "800",
		"prices": {"currency_code": "PLN", "currency_minor_unit": 2, "price": "", "regular_price": "", "sale_price": ""},
		"raw": {"regular_price": "1200", "sale_price": "700"}
	}`)

	got := NormalizePriceSet(src)

	assert.Equal(t, "PLN", got.CurrencyCode)
	assert.Equal(t, 2, got.CurrencyMinorUnit)
	assert.Equal(t, "900", got.Price)
	// regular_price: prices.regular -> prices.price -> top.regular -> top.price
	assert.Equal(t, "900", got.RegularPrice)
	assert.Equal(t, "800", got.SalePrice)
}

func TestNormalizePriceSet_FallsBackToRaw(t *testing.T) {
	src := mustParse(t, `{"raw": {"price": "1500", "regular_price": "1700", "currency_minor_unit": "3"}}`)

	got := NormalizePriceSet(src)

	assert.Equal(t, 3, got.CurrencyMinorUnit)
	assert.Equal(t, "1500", got.Price)
	assert.Equal(t, "1700", got.RegularPrice)
	assert.Equal(t, "", got.SalePrice)
	assert.Equal(t, "1.700", got.Decimal(got.RegularPrice))
}

func TestNormalizePriceSet_RawRegularFallsBackToRawPrice(t *testing.T) {
	got := NormalizePriceSet(mustParse(t, `{"raw": {"price": "1500"}}`))

	assert.Equal(t, "1500", got.Price)
	assert.Equal(t, "1500", got.RegularPrice)
	assert.Equal(t, "15.00", got.Decimal(got.RegularPrice))
}

func TestNormalizePriceSet_DefaultMinorUnit(t *testing.T) {
	got := NormalizePriceSet(mustParse(t, `{"prices": {"price": "100"}}`))

	assert.Equal(t, 2, got.CurrencyMinorUnit)
	assert.Equal(t, "100", got.RegularPrice, "regular_price falls back to price")
	assert.Equal(t, "1.00", got.Decimal(got.RegularPrice))
}
