package catalog

import "strings"

// Term to kategoria albo tag.
type Term struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// orderedMap trzyma kolejność pierwszego wstawienia klucza.
type orderedMap[T any] struct {
	keys []string
	vals map[string]T
}

func newOrderedMap[T any]() *orderedMap[T] {
	return &orderedMap[T]{vals: map[string]T{}}
}

func (m *orderedMap[T]) get(key string) (T, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *orderedMap[T]) put(key string, v T) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

func (m *orderedMap[T]) values() []T {
	out := make([]T, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

// concatLists skleja dwa źródła; wartości niebędące listą są pomijane.
func concatLists(primary, secondary Value) []Value {
	var merged []Value
	merged = append(merged, primary.Items()...)
	merged = append(merged, secondary.Items()...)
	return merged
}

// MergeTerms scala kategorie/tagi z dwóch źródeł. Klucz: id, potem slug,
// potem nazwa małymi literami; ostatni zapis wygrywa, kolejność z pierwszego.
func MergeTerms(primary, secondary Value) []Term {
	found := newOrderedMap[Term]()

	for _, item := range concatLists(primary, secondary) {
		var (
			id         any
			name, slug string
		)
		switch item.Kind() {
		case Object:
			id = item.Get("id").Raw()
			name = strings.TrimSpace(firstText(item.Get("name").Text(), item.Get("slug").Text()))
			slug = strings.TrimSpace(firstText(item.Get("slug").Text(), Slugify(name)))
		case Scalar:
			name = item.trimmed()
			slug = Slugify(name)
		default:
			continue
		}
		if name == "" && slug == "" {
			continue
		}

		key := slug
		if key == "" {
			key = strings.ToLower(name)
		}
		if idKey := Wrap(id).Text(); id != nil && idKey != "" {
			key = idKey
		}
		if name == "" {
			name = slug
		}
		if slug == "" {
			slug = Slugify(name)
		}
		found.put(key, Term{ID: id, Name: name, Slug: slug})
	}

	return found.values()
}
