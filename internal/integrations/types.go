// internal/integrations/types.go
package integrations

import (
	"context"
	"encoding/json"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/rs/zerolog"
)

// PageFunc dostaje numer strony, ile przybyło i ile jest łącznie.
type PageFunc func(page, added, total int)

// Source to zdalny katalog sklepu (surowe rekordy, bez normalizacji).
type Source interface {
	Name() string
	SiteRoot() string
	// Products pobiera strony do pustej/krótkiej strony albo limitu (0 = bez limitu).
	Products(ctx context.Context, maxProducts int, onPage PageFunc) ([]catalog.Value, error)
	// Variations: 404 albo puste id = pusta lista.
	Variations(ctx context.Context, productID string) ([]catalog.Value, error)
	// Fetch zwraca surowe bajty (obrazki) i Content-Type.
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type Factory func(log zerolog.Logger, siteRoot string, raw json.RawMessage) (Source, error)
