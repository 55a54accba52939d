package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultMinorUnit = 2
	maxMinorUnit     = 18
)

var (
	reDecimal = regexp.MustCompile(`^-?\d+\.\d+$`)
	reInteger = regexp.MustCompile(`^-?\d+$`)
	reDigits  = regexp.MustCompile(`^\d+$`)
)

// PriceSet: kwoty w jednostkach podrzędnych waluty (np. grosze), jako tekst.
type PriceSet struct {
	CurrencyCode      string `json:"currency_code,omitempty"`
	CurrencySymbol    string `json:"currency_symbol,omitempty"`
	CurrencyPrefix    string `json:"currency_prefix,omitempty"`
	CurrencySuffix    string `json:"currency_suffix,omitempty"`
	CurrencyMinorUnit int    `json:"currency_minor_unit"`
	Price             string `json:"price"`
	RegularPrice      string `json:"regular_price"`
	SalePrice         string `json:"sale_price"`
}

// ToDecimal zamienia kwotę w jednostkach podrzędnych na zapis dziesiętny.
// Wartości już dziesiętne wracają bez zmian (przecinek -> kropka).
// Jednostka nieczytelna albo większa niż maxMinorUnit: kwota bez przeliczenia.
func ToDecimal(value, minorUnit string) string {
	raw := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if raw == "" {
		return ""
	}
	if reDecimal.MatchString(raw) {
		return raw
	}
	if !reInteger.MatchString(raw) {
		return ""
	}
	unit, err := strconv.Atoi(strings.TrimSpace(minorUnit))
	if err != nil || unit > maxMinorUnit {
		return raw
	}
	if unit < 0 {
		unit = 0
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return ""
	}
	return amount.Shift(-int32(unit)).StringFixed(int32(unit))
}

// Decimal przelicza jedno z pól zestawu według jego jednostki.
func (p PriceSet) Decimal(value string) string {
	return ToDecimal(value, strconv.Itoa(p.CurrencyMinorUnit))
}

// NormalizePriceSet składa ceny z "prices", pól najwyższego poziomu i "raw",
// pierwsza niepusta wartość wygrywa. regular_price na każdym poziomie
// sięga jeszcze po price, zanim przejdzie do następnego.
func NormalizePriceSet(source Value) PriceSet {
	prices := source.Get("prices")
	if !prices.IsObject() {
		prices = Value{}
	}
	top := source
	raw := source.Get("raw")
	if !raw.IsObject() {
		raw = Value{}
	}

	return PriceSet{
		CurrencyCode:      prices.Get("currency_code").Text(),
		CurrencySymbol:    prices.Get("currency_symbol").Text(),
		CurrencyPrefix:    prices.Get("currency_prefix").Text(),
		CurrencySuffix:    prices.Get("currency_suffix").Text(),
		CurrencyMinorUnit: minorUnitOf(prices, top, raw),
		Price: FirstNonEmpty(
			prices.Get("price"), top.Get("price"), raw.Get("price"),
		).trimmed(),
		RegularPrice: FirstNonEmpty(
			prices.Get("regular_price"), prices.Get("price"),
			top.Get("regular_price"), top.Get("price"),
			raw.Get("regular_price"), raw.Get("price"),
		).trimmed(),
		SalePrice: FirstNonEmpty(
			prices.Get("sale_price"), top.Get("sale_price"), raw.Get("sale_price"),
		).trimmed(),
	}
}

func minorUnitOf(prices, top, raw Value) int {
	candidate := FirstNonEmpty(
		prices.Get("currency_minor_unit"),
		top.Get("currency_minor_unit"),
		raw.Get("currency_minor_unit"),
	).trimmed()
	if reDigits.MatchString(candidate) {
		if n, err := strconv.Atoi(candidate); err == nil {
			return n
		}
	}
	if n, err := strconv.Atoi(prices.Get("currency_minor_unit").trimmed()); err == nil {
		return n
	}
	return defaultMinorUnit
}
