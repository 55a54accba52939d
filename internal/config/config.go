// internal/config/config.go
package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bartek5186/wooexport/internal/integrations/woocommerce"
	"github.com/joho/godotenv"
)

const DefaultSource = "woocommerce"

// Główny config aplikacji
type Config struct {
	AutoStart           bool                       `json:"auto_start"`
	SyncIntervalSeconds int                        `json:"sync_interval_seconds"`
	LogLevel            string                     `json:"log_level"`
	OutputDir           string                     `json:"output_dir"` // pusty = ~/Downloads/woo-exports
	MaxProducts         int                        `json:"max_products"`
	Source              string                     `json:"source"` // nazwa integracji źródła
	DB                  DBConfig                   `json:"db"`
	Watch               []WatchTarget              `json:"watch"`
	Integrations        map[string]json.RawMessage `json:"integrations"` // nazwa -> surowy JSON integracji
}

type DBConfig struct {
	Driver string `json:"driver"` // sqlite | sqlite-pure | postgres | mysql
	DSN    string `json:"dsn"`    // dla sqlite: pusty = plik w katalogu aplikacji
}

// WatchTarget: sklep eksportowany cyklicznie w trybie watch.
type WatchTarget struct {
	URL         string `json:"url"`
	MaxProducts int    `json:"max_products"`
	OutputDir   string `json:"output_dir,omitempty"`
}

func Default() *Config {
	rawWoo, _ := json.Marshal(woocommerce.DefaultConfig())
	return &Config{
		AutoStart:           false,
		SyncIntervalSeconds: 3600,
		LogLevel:            "info",
		Source:              DefaultSource,
		DB:                  DBConfig{Driver: "sqlite"},
		Watch:               []WatchTarget{},
		Integrations: map[string]json.RawMessage{
			DefaultSource: rawWoo,
		},
	}
}

func LoadOrCreate(path string) (*Config, bool, error) {
	// upewnij się, że katalog istnieje
	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return nil, false, fmt.Errorf("write default config: %w", err)
			}
			return cfg, true, nil
		}
		return nil, false, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, false, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Integrations == nil {
		cfg.Integrations = map[string]json.RawMessage{}
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "sqlite"
	}
	return &cfg, false, nil
}

func Save(path string, cfg *Config) error {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// LoadEnv wczytuje pliki .env (te, które istnieją); zmienne już ustawione
// w środowisku mają pierwszeństwo.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv nadpisuje wybrane pola zmiennymi WOOEXPORT_*.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("WOOEXPORT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("WOOEXPORT_DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("WOOEXPORT_DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("WOOEXPORT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("WOOEXPORT_MAX_PRODUCTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WOOEXPORT_MAX_PRODUCTS: %w", err)
		}
		c.MaxProducts = n
	}
	return nil
}

// SourceConfig zwraca surowy config aktualnego źródła (pusty obiekt gdy brak).
func (c *Config) SourceConfig() json.RawMessage {
	if raw, ok := c.Integrations[c.Source]; ok {
		return raw
	}
	return json.RawMessage(`{}`)
}

var ErrNoWatchTargets = errors.New("no watch targets configured")
