// internal/job/payload.go
package job

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bartek5186/wooexport/internal/catalog"
)

const MaxProductsLimit = 10000

// Payload zlecenia eksportu (JSON na stdin w trybie job).
type Payload struct {
	URL         string `json:"url"`
	MaxProducts int    `json:"maxProducts"`
	OutputDir   string `json:"outputDir"`
}

// ParsePayload czyta jeden obiekt JSON; maxProducts przycinane do [0, 10000],
// nieczytelne = 0; pusty outputDir = ~/Downloads/woo-exports.
func ParsePayload(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read payload: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Payload{}, errors.New("missing job payload on stdin")
	}
	v, err := catalog.Parse(data)
	if err != nil {
		return Payload{}, fmt.Errorf("invalid JSON payload on stdin: %w", err)
	}
	if !v.IsObject() {
		return Payload{}, errors.New("payload must be a JSON object")
	}

	return Payload{
		URL:         strings.TrimSpace(v.Get("url").Text()),
		MaxProducts: ClampMaxProducts(parseCount(v.Get("maxProducts"))),
		OutputDir:   ResolveOutputDir(v.Get("outputDir").Text()),
	}, nil
}

func parseCount(v catalog.Value) int {
	text := strings.TrimSpace(v.Text())
	if text == "" {
		return 0
	}
	if n, err := strconv.Atoi(text); err == nil {
		return n
	}
	// liczba JSON z częścią ułamkową: obcięcie
	if v.Kind() == catalog.Scalar {
		if _, isString := v.Raw().(string); !isString {
			if f, err := strconv.ParseFloat(text, 64); err == nil {
				return int(f)
			}
		}
	}
	return 0
}

func ClampMaxProducts(n int) int {
	return min(max(n, 0), MaxProductsLimit)
}

// ResolveOutputDir: pusty = ~/Downloads/woo-exports, "~" rozwinięte, ścieżka absolutna.
func ResolveOutputDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join("~", "Downloads", "woo-exports")
	}
	dir = expandHome(dir)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
