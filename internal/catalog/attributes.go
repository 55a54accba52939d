package catalog

import (
	"encoding/json"
	"slices"
	"strings"
)

// Attribute po normalizacji. Options bez duplikatów (bez względu na wielkość liter).
// Visible i Variation trzymają to, co przyszło ze sklepu; domyślne true
// dokładają IsVisible / IsVariation.
type Attribute struct {
	ID        any      `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Taxonomy  string   `json:"taxonomy"`
	Options   []string `json:"options"`
	Visible   Tristate `json:"-"`
	Variation Tristate `json:"-"`
}

func (a Attribute) IsVisible() bool   { return a.Visible.OrTrue() }
func (a Attribute) IsVariation() bool { return a.Variation.OrTrue() }

// MarshalJSON zapisuje flagi już rozstrzygnięte.
func (a Attribute) MarshalJSON() ([]byte, error) {
	type plain Attribute
	return json.Marshal(struct {
		plain
		Visible   bool `json:"visible"`
		Variation bool `json:"variation"`
	}{plain(a), a.IsVisible(), a.IsVariation()})
}

// AttributeOptions zbiera wartości ze wszystkich źródeł po kolei:
// terms, options, option/value, values. Deduplikacja case-insensitive,
// zostaje pisownia pierwszego wystąpienia.
func AttributeOptions(attr Value) []string {
	var options []string
	add := func(v Value) {
		if HasContent(v) {
			options = append(options, v.trimmed())
		}
	}

	for _, term := range attr.Get("terms").Items() {
		if term.IsObject() {
			add(FirstNonEmpty(term.Get("name"), term.Get("slug")))
			continue
		}
		add(term)
	}
	for _, item := range attr.Get("options").Items() {
		add(item)
	}
	for _, key := range []string{"option", "value"} {
		add(attr.Get(key))
	}
	for _, item := range attr.Get("values").Items() {
		add(item)
	}

	return dedupeFold(options)
}

func dedupeFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeAttribute zwraca false, gdy atrybut nie ma nazwy ani slugu.
func NormalizeAttribute(attr Value) (Attribute, bool) {
	rawName := FirstNonEmpty(
		attr.Get("name"),
		attr.Get("label"),
		attr.Get("attribute"),
		attr.Get("slug"),
		attr.Get("taxonomy"),
	)
	if !HasContent(rawName) {
		return Attribute{}, false
	}
	name := strings.TrimSpace(stripAttributePrefixes(rawName.Text()))
	if name == "" {
		return Attribute{}, false
	}

	slug := Slugify(firstText(attr.Get("slug").Text(), attr.Get("taxonomy").Text(), name))
	if slug == "" {
		return Attribute{}, false
	}

	taxonomy := strings.TrimSpace(firstText(attr.Get("taxonomy").Text(), attr.Get("attribute").Text()))
	taxonomy = reAttrPrefix.ReplaceAllString(taxonomy, "")
	if taxonomy != "" && !strings.HasPrefix(strings.ToLower(taxonomy), "pa_") {
		taxonomy = "pa_" + Slugify(taxonomy)
	}
	if taxonomy == "" {
		taxonomy = "pa_" + slug
	}

	return Attribute{
		ID:        attr.Get("id").Raw(),
		Name:      name,
		Slug:      slug,
		Taxonomy:  taxonomy,
		Options:   AttributeOptions(attr),
		Visible:   TristateOf(attr.Get("visible")),
		Variation: TristateOf(attr.Get("variation")),
	}, true
}

// MergeAttributes scala atrybuty z dwóch źródeł po kluczu
// slug(taxonomy|slug|name); przy kolizji wygrywa dłuższa lista opcji.
func MergeAttributes(primary, secondary Value) []Attribute {
	found := newOrderedMap[Attribute]()

	for _, item := range concatLists(primary, secondary) {
		if !item.IsObject() {
			continue
		}
		attr, ok := NormalizeAttribute(item)
		if !ok {
			continue
		}
		key := Slugify(firstText(attr.Taxonomy, attr.Slug, attr.Name))
		if key == "" {
			continue
		}
		current, exists := found.get(key)
		if !exists || len(attr.Options) > len(current.Options) {
			found.put(key, attr)
		}
	}

	return found.values()
}

// AliasKeys zwraca nazwę wyświetlaną i klucze, pod którymi atrybut może
// wystąpić (slug z name, taxonomy, slug).
func (a Attribute) AliasKeys() (string, []string) {
	var (
		name string
		keys []string
	)
	for _, candidate := range []string{a.Name, a.Taxonomy, a.Slug} {
		text := strings.TrimSpace(candidate)
		if text == "" {
			continue
		}
		if name == "" {
			name = text
		}
		key := Slugify(text)
		if key != "" && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	if name == "" {
		name = "attribute"
	}
	return name, keys
}
