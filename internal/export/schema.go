package export

import (
	"strings"

	"github.com/bartek5186/wooexport/internal/catalog"
)

// SchemaEntry opisuje jedną kolumnę atrybutu produktu.
type SchemaEntry struct {
	Name    string
	Keys    []string // aliasy (slug z name/taxonomy/slug)
	Values  []string
	Visible string // "0"/"1"
	Global  string // "0"/"1"
}

// BuildSchema: jeden wpis na atrybut produktu, w kolejności atrybutów.
// Atrybuty bez kluczy są pomijane.
func BuildSchema(p catalog.Product) []SchemaEntry {
	schema := make([]SchemaEntry, 0, len(p.Attributes))
	for _, attr := range p.Attributes {
		name, keys := attr.AliasKeys()
		if len(keys) == 0 {
			continue
		}
		schema = append(schema, SchemaEntry{
			Name:    name,
			Keys:    keys,
			Values:  attr.Options,
			Visible: flag(attr.IsVisible()),
			Global:  flag(strings.HasPrefix(attr.Taxonomy, "pa_")),
		})
	}
	return schema
}

// BuildVariationSelectionMap: alias -> pierwsza opcja wariantu.
// Przy kolizji aliasów wygrywa pierwszy atrybut.
func BuildVariationSelectionMap(v catalog.Variation) map[string]string {
	selection := map[string]string{}
	for _, attr := range v.Attributes {
		if len(attr.Options) == 0 {
			continue
		}
		_, keys := attr.AliasKeys()
		for _, key := range keys {
			if _, ok := selection[key]; !ok {
				selection[key] = attr.Options[0]
			}
		}
	}
	return selection
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
