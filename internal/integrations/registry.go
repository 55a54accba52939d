// internal/integrations/registry.go
package integrations

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func Get(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Names zwraca zarejestrowane źródła posortowane alfabetycznie.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// New buduje źródło po nazwie; logger dostaje pole "integration".
func New(name string, log zerolog.Logger, siteRoot string, raw json.RawMessage) (Source, error) {
	f, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown source %q (registered: %v)", name, Names())
	}
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	return f(log.With().Str("integration", name).Logger(), siteRoot, raw)
}
