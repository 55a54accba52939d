// internal/catalog/shape.go
package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Kind to kształt surowej wartości JSON.
type Kind int

const (
	Absent Kind = iota
	Scalar
	Sequence
	Object
)

// Value opakowuje zdekodowany JSON (any) i pozwala chodzić po nim bez
// rzutowań w każdym miejscu.
type Value struct {
	raw any
}

func Wrap(v any) Value {
	if val, ok := v.(Value); ok {
		return val
	}
	return Value{raw: v}
}

// Decode czyta jeden dokument JSON; liczby zostają jako json.Number.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, err
	}
	return Value{raw: v}, nil
}

func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case nil:
		return Absent
	case []any:
		return Sequence
	case map[string]any:
		return Object
	default:
		return Scalar
	}
}

func (v Value) Raw() any { return v.raw }

func (v Value) IsObject() bool   { return v.Kind() == Object }
func (v Value) IsSequence() bool { return v.Kind() == Sequence }

// Get zwraca pole obiektu; dla innych kształtów Absent.
func (v Value) Get(key string) Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	return Value{raw: m[key]}
}

// Has mówi, czy klucz fizycznie występuje w obiekcie (nawet z null).
func (v Value) Has(key string) bool {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// Items zwraca elementy listy; dla innych kształtów nil.
func (v Value) Items() []Value {
	list, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(list))
	for i, item := range list {
		out[i] = Value{raw: item}
	}
	return out
}

func (v Value) Len() int {
	switch x := v.raw.(type) {
	case []any:
		return len(x)
	case map[string]any:
		return len(x)
	case string:
		return len(x)
	}
	return 0
}

// Text renderuje skalar jako tekst. Listy i obiekty dają "".
func (v Value) Text() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

// Bool zwraca (wartość, true) tylko dla literalnego JSON-owego bool.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Truthy odpowiada "niepustej" wartości: nie-null, nie pusty string/lista/obiekt,
// nie false i nie zero.
func (v Value) Truthy() bool {
	switch x := v.raw.(type) {
	case nil:
		return false
	case bool:
		return x
	case string, []any, map[string]any:
		return v.Len() > 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	}
	return true
}

// Tristate: nieustawione / true / false. Domyślną wartość wybiera wywołujący.
type Tristate struct {
	set bool
	val bool
}

func TristateOf(v Value) Tristate {
	b, ok := v.Bool()
	return Tristate{set: ok, val: b}
}

// Explicit: wartość ustawiona wprost.
func Explicit(b bool) Tristate { return Tristate{set: true, val: b} }

// OrTrue: true, chyba że jawnie false.
func (t Tristate) OrTrue() bool { return !t.set || t.val }

// Ptr zwraca nil dla nieustawionego.
func (t Tristate) Ptr() *bool {
	if !t.set {
		return nil
	}
	b := t.val
	return &b
}

func (v Value) trimmed() string { return strings.TrimSpace(v.Text()) }
