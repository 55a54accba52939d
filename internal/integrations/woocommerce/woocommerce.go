// internal/integrations/woocommerce/woocommerce.go
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/bartek5186/wooexport/internal/integrations"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const Name = "woocommerce"

type Config struct {
	PerPage             int    `json:"per_page"`              // Store API max 100
	TimeoutSec          int    `json:"timeout_sec"`           // na pojedynczy request
	InsecureTLSFallback bool   `json:"insecure_tls_fallback"` // ponów bez weryfikacji certyfikatu
	RatePerMinute       int    `json:"rate_per_minute"`       // 0 = bez limitu
	UserAgent           string `json:"user_agent"`
}

func DefaultConfig() Config {
	return Config{
		PerPage:             100,
		TimeoutSec:          30,
		InsecureTLSFallback: true,
		RatePerMinute:       300,
		UserAgent:           "Mozilla/5.0 (compatible; WooExport/1.0; +https://localhost)",
	}
}

// Store czyta publiczne Store API (wc/store/v1), bez kluczy API.
type Store struct {
	log      zerolog.Logger
	cfg      Config
	siteRoot string
	client   *client
}

func (s *Store) Name() string     { return Name }
func (s *Store) SiteRoot() string { return s.siteRoot }

// New: siteRoot w postaci "scheme://host/".
func New(log zerolog.Logger, siteRoot string, cfg Config) (*Store, error) {
	root, err := catalog.NormalizeSiteRoot(siteRoot)
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if cfg.PerPage <= 0 || cfg.PerPage > 100 {
		cfg.PerPage = def.PerPage
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = def.TimeoutSec
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if os.Getenv("WOOEXPORT_INSECURE_TLS") == "0" {
		cfg.InsecureTLSFallback = false
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), max(1, cfg.RatePerMinute/60))
	}

	return &Store{
		log:      log,
		cfg:      cfg,
		siteRoot: root,
		client:   newClient(log, cfg, limiter),
	}, nil
}

func (s *Store) productsURL(page int) string {
	return fmt.Sprintf("%swp-json/wc/store/v1/products?per_page=%d&page=%d", s.siteRoot, s.cfg.PerPage, page)
}

func (s *Store) variationsURL(productID string, page int) string {
	return fmt.Sprintf("%swp-json/wc/store/v1/products/%s/variations?per_page=%d&page=%d",
		s.siteRoot, url.PathEscape(productID), s.cfg.PerPage, page)
}

func (s *Store) Products(ctx context.Context, maxProducts int, onPage integrations.PageFunc) ([]catalog.Value, error) {
	var products []catalog.Value
	for page := 1; ; page++ {
		data, err := s.client.getJSON(ctx, s.productsURL(page), false)
		if err != nil {
			return nil, err
		}
		items := data.Items()
		if !data.IsSequence() || len(items) == 0 {
			break
		}

		products = append(products, items...)
		if maxProducts > 0 && len(products) >= maxProducts {
			products = products[:maxProducts]
			s.log.Info().Msgf("Reached maxProducts limit (%d).", maxProducts)
			break
		}

		s.log.Info().Msgf("Products page %d: +%d (total=%d).", page, len(items), len(products))
		if onPage != nil {
			onPage(page, len(items), len(products))
		}
		if len(items) < s.cfg.PerPage {
			break
		}
	}
	return products, nil
}

func (s *Store) Variations(ctx context.Context, productID string) ([]catalog.Value, error) {
	if productID == "" {
		return nil, nil
	}
	var variations []catalog.Value
	for page := 1; ; page++ {
		data, err := s.client.getJSON(ctx, s.variationsURL(productID, page), true)
		if err != nil {
			return nil, err
		}
		if data.Kind() == catalog.Absent {
			// 404: produkt bez endpointu wariantów
			return nil, nil
		}
		items := data.Items()
		if !data.IsSequence() || len(items) == 0 {
			break
		}
		variations = append(variations, items...)
		if len(items) < s.cfg.PerPage {
			break
		}
	}
	return variations, nil
}

func (s *Store) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	return s.client.getBytes(ctx, rawURL)
}

func factory(log zerolog.Logger, siteRoot string, raw json.RawMessage) (integrations.Source, error) {
	cfg := DefaultConfig()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("woocommerce config: %w", err)
		}
	}
	return New(log, siteRoot, cfg)
}

func init() {
	integrations.Register(Name, factory)
}
