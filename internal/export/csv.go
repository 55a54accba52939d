package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
)

const utf8BOM = "\ufeff"

// WriteCSV zapisuje tabelę z BOM (Excel) i końcami linii CRLF,
// brakujące komórki jako "". Klucze spoza nagłówka są ignorowane.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	record := make([]string, len(t.Headers))
	for i, row := range t.Rows {
		for j, h := range t.Headers {
			record[j] = row[h]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Metadata to zawartość metadata.json.
type Metadata struct {
	Source     string            `json:"source"`
	CapturedAt string            `json:"captured_at"`
	Total      int               `json:"total"`
	Products   []catalog.Product `json:"products"`
}

func NewMetadata(source string, capturedAt time.Time, products []catalog.Product) Metadata {
	if products == nil {
		products = []catalog.Product{}
	}
	return Metadata{
		Source:     source,
		CapturedAt: capturedAt.UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		Total:      len(products),
		Products:   products,
	}
}

// WriteMetadata zapisuje znormalizowaną partię jako JSON z wcięciem 2.
func WriteMetadata(w io.Writer, m Metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}
