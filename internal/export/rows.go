// internal/export/rows.go
package export

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bartek5186/wooexport/internal/catalog"
)

// Stałe kolumny importu WooCommerce (przed kolumnami atrybutów).
var baseHeaders = []string{
	"ID",
	"Type",
	"Parent",
	"SKU",
	"Name",
	"Published",
	"Is featured?",
	"Visibility in catalog",
	"Short description",
	"Description",
	"Tax status",
	"In stock?",
	"Regular price",
	"Sale price",
	"Categories",
	"Tags",
	"Images",
}

// Row: nagłówek -> wartość.
type Row map[string]string

type Stats struct {
	Products      int
	Variations    int
	MaxAttributes int
	// komórki wariantu bez dopasowanego aliasu (zostają puste)
	UnmatchedSelections int
}

// Unmatched wskazuje wariant i slot bez dopasowanej wartości.
type Unmatched struct {
	ProductID   string
	VariationID string
	Attribute   string
	Slot        int
}

type Table struct {
	Headers   []string
	Rows      []Row
	Stats     Stats
	Unmatched []Unmatched
}

// MaxAttributeColumns: największa liczba slotów atrybutów w całej partii
// (schemat produktu albo liczba atrybutów któregoś wariantu).
func MaxAttributeColumns(products []catalog.Product) int {
	maxCols := 0
	for _, p := range products {
		maxCols = max(maxCols, len(BuildSchema(p)))
		for _, v := range p.VariationDetails {
			maxCols = max(maxCols, len(v.Attributes))
		}
	}
	return maxCols
}

func attributeHeaders(slot int) [4]string {
	return [4]string{
		fmt.Sprintf("Attribute %d name", slot),
		fmt.Sprintf("Attribute %d value(s)", slot),
		fmt.Sprintf("Attribute %d visible", slot),
		fmt.Sprintf("Attribute %d global", slot),
	}
}

// Headers: 17 stałych kolumn + 4 na każdy slot atrybutu.
func Headers(maxAttributes int) []string {
	headers := make([]string, 0, len(baseHeaders)+4*maxAttributes)
	headers = append(headers, baseHeaders...)
	for slot := 1; slot <= maxAttributes; slot++ {
		h := attributeHeaders(slot)
		headers = append(headers, h[:]...)
	}
	return headers
}

// BuildRows liczy wspólną liczbę slotów dla całej partii i emituje wiersz
// rodzica oraz wiersze wariantów. Sloty są pozycyjne per produkt: slot N
// u dwóch produktów może oznaczać różne atrybuty.
func BuildRows(products []catalog.Product) Table {
	maxAttributes := MaxAttributeColumns(products)
	t := Table{
		Headers: Headers(maxAttributes),
		Rows:    make([]Row, 0, len(products)),
		Stats:   Stats{Products: len(products), MaxAttributes: maxAttributes},
	}

	for _, p := range products {
		isVariable := p.IsVariable() || len(p.VariationDetails) > 0
		parentSKU := p.SKU
		if parentSKU == "" {
			parentSKU = syntheticParentSKU(p)
		}
		schema := BuildSchema(p)

		parent := parentRow(p, isVariable, parentSKU)
		for slot := 1; slot <= maxAttributes; slot++ {
			h := attributeHeaders(slot)
			if slot > len(schema) {
				blankSlot(parent, h)
				continue
			}
			entry := schema[slot-1]
			parent[h[0]] = entry.Name
			parent[h[1]] = strings.Join(entry.Values, " | ")
			parent[h[2]] = entry.Visible
			parent[h[3]] = entry.Global
		}
		t.Rows = append(t.Rows, parent)

		if !isVariable {
			continue
		}

		for _, v := range p.VariationDetails {
			row := variationRow(p, v, parentSKU)
			selection := BuildVariationSelectionMap(v)

			for slot := 1; slot <= maxAttributes; slot++ {
				h := attributeHeaders(slot)
				if slot > len(schema) {
					blankSlot(row, h)
					continue
				}
				entry := schema[slot-1]
				selected, ok := lookupSelection(selection, entry.Keys)
				if !ok {
					t.Stats.UnmatchedSelections++
					t.Unmatched = append(t.Unmatched, Unmatched{
						ProductID:   p.IDText(),
						VariationID: v.IDText(),
						Attribute:   entry.Name,
						Slot:        slot,
					})
				}
				row[h[0]] = entry.Name
				row[h[1]] = selected
				row[h[2]] = entry.Visible
				row[h[3]] = entry.Global
			}

			t.Rows = append(t.Rows, row)
			t.Stats.Variations++
		}
	}

	return t
}

func lookupSelection(selection map[string]string, keys []string) (string, bool) {
	for _, key := range keys {
		if v, ok := selection[key]; ok {
			return v, true
		}
	}
	return "", false
}

func blankSlot(row Row, h [4]string) {
	for _, name := range h {
		row[name] = ""
	}
}

func parentRow(p catalog.Product, isVariable bool, parentSKU string) Row {
	productType := p.Type
	if productType == "" {
		productType = "simple"
	}
	sku := p.SKU
	regular := p.Prices.Decimal(p.Prices.RegularPrice)
	sale := p.Prices.Decimal(p.Prices.SalePrice)
	if isVariable {
		productType = "variable"
		sku = parentSKU
		// ceny niosą wiersze wariantów
		regular, sale = "", ""
	}

	return Row{
		"ID":                    "",
		"Type":                  productType,
		"Parent":                "",
		"SKU":                   sku,
		"Name":                  p.Name,
		"Published":             "1",
		"Is featured?":          flag(p.IsFeatured),
		"Visibility in catalog": orDefault(p.CatalogVisibility, "visible"),
		"Short description":     p.ShortDescription,
		"Description":           p.Description,
		"Tax status":            orDefault(p.TaxStatus, "taxable"),
		"In stock?":             StockFlag(p.StockStatus, p.IsInStock),
		"Regular price":         regular,
		"Sale price":            sale,
		"Categories":            joinTermNames(p.Categories),
		"Tags":                  joinTermNames(p.Tags),
		"Images":                joinImageSrcs(p.Images),
	}
}

// syntheticParentSKU: parent-{id}; bez id skrót ze sluga i nazwy,
// żeby produkty bez id nie dzieliły jednego SKU.
func syntheticParentSKU(p catalog.Product) string {
	if id := p.IDText(); id != "" {
		return "parent-" + id
	}
	return "parent-" + shortDigest(p.Slug+"|"+p.Name)
}

func shortDigest(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:6]
}

func variationRow(p catalog.Product, v catalog.Variation, parentSKU string) Row {
	sku := v.SKU
	if sku == "" {
		suffix := v.IDText()
		if suffix == "" {
			suffix = shortDigest(parentSKU)
		}
		sku = parentSKU + "-var-" + suffix
	}

	image := ""
	if v.Image != nil {
		image = v.Image.Src
	}

	return Row{
		"ID":                    "",
		"Type":                  "variation",
		"Parent":                parentSKU,
		"SKU":                   sku,
		"Name":                  VariationName(v, p.Name),
		"Published":             "1",
		"Is featured?":          "",
		"Visibility in catalog": "visible",
		"Short description":     "",
		"Description":           v.Description,
		"Tax status":            orDefault(orDefault(v.TaxStatus, p.TaxStatus), "taxable"),
		"In stock?":             StockFlag(v.StockStatus, v.IsInStock),
		"Regular price":         v.Prices.Decimal(firstNonBlank(v.Prices.RegularPrice, v.Prices.Price)),
		"Sale price":            v.Prices.Decimal(v.Prices.SalePrice),
		"Categories":            "",
		"Tags":                  "",
		"Images":                image,
	}
}

// VariationName: własna nazwa, albo "Rodzic - wartość / wartość", albo "Rodzic - id".
func VariationName(v catalog.Variation, parentName string) string {
	if strings.TrimSpace(v.Name) != "" {
		return v.Name
	}
	if parentName == "" {
		parentName = "Variation"
	}
	var values []string
	for _, attr := range v.Attributes {
		if len(attr.Options) > 0 {
			values = append(values, attr.Options[0])
		}
	}
	if len(values) > 0 {
		return parentName + " - " + strings.Join(values, " / ")
	}
	return parentName + " - " + orDefault(v.IDText(), "item")
}

// StockFlag: "1" dla instock/true, "0" dla outofstock/false, inaczej "".
func StockFlag(stockStatus string, isInStock *bool) string {
	if stockStatus == "instock" || (isInStock != nil && *isInStock) {
		return "1"
	}
	if stockStatus == "outofstock" || (isInStock != nil && !*isInStock) {
		return "0"
	}
	return ""
}

func joinTermNames(terms []catalog.Term) string {
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t.Name) != "" {
			names = append(names, t.Name)
		}
	}
	return strings.Join(names, ", ")
}

func joinImageSrcs(images []catalog.Image) string {
	srcs := make([]string, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.Src) != "" {
			srcs = append(srcs, img.Src)
		}
	}
	return strings.Join(srcs, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
