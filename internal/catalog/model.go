// internal/catalog/model.go
package catalog

import "strings"

// Image produktu; Src zawsze absolutny.
type Image struct {
	ID        any    `json:"id,omitempty"`
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Srcset    string `json:"srcset,omitempty"`
	Sizes     string `json:"sizes,omitempty"`
	Name      string `json:"name,omitempty"`
	Alt       string `json:"alt,omitempty"`
}

// ProductRaw: podpowiedzi z surowego rekordu potrzebne do wykrycia wariantów.
type ProductRaw struct {
	HasOptions *bool `json:"has_options,omitempty"`
	Variations []any `json:"variations,omitempty"`
}

type Product struct {
	ID                any         `json:"id"`
	Name              string      `json:"name"`
	Slug              string      `json:"slug"`
	Type              string      `json:"type"` // "simple","variable", ...
	Permalink         string      `json:"permalink"`
	Description       string      `json:"description"`
	ShortDescription  string      `json:"short_description"`
	SKU               string      `json:"sku"`
	StockStatus       string      `json:"stock_status"`
	CatalogVisibility string      `json:"catalog_visibility"`
	TaxStatus         string      `json:"tax_status"`
	IsFeatured        bool        `json:"is_featured"`
	IsInStock         *bool       `json:"is_in_stock"`
	Prices            PriceSet    `json:"prices"`
	Categories        []Term      `json:"categories"`
	Tags              []Term      `json:"tags"`
	Attributes        []Attribute `json:"attributes"`
	Images            []Image     `json:"images"`
	VariationDetails  []Variation `json:"variationDetails"`
	Raw               ProductRaw  `json:"raw"`
}

type Diagnostics struct {
	MissingPrice bool   `json:"missing_price"`
	MissingImage bool   `json:"missing_image"`
	PriceSource  string `json:"price_source"`
	ImageSource  string `json:"image_source"`
}

type Variation struct {
	ID          any         `json:"id"`
	Name        string      `json:"name"`
	SKU         string      `json:"sku"`
	Description string      `json:"description"`
	StockStatus string      `json:"stock_status"`
	IsInStock   *bool       `json:"is_in_stock"`
	TaxStatus   string      `json:"tax_status"`
	Prices      PriceSet    `json:"prices"`
	Attributes  []Attribute `json:"attributes"` // jedna opcja = wybrana wartość
	Image       *Image      `json:"image"`
	Images      []string    `json:"images"`
	Raw         any         `json:"raw"`
	Diagnostics Diagnostics `json:"_diagnostics"`
}

// IsVariable: typ "variable", has_options albo niepusta lista wariantów.
func (p Product) IsVariable() bool {
	if strings.ToLower(p.Type) == "variable" {
		return true
	}
	if p.Raw.HasOptions != nil && *p.Raw.HasOptions {
		return true
	}
	return len(p.Raw.Variations) > 0
}

// IDText renderuje identyfikator tak, jak trafia do SKU i ścieżek.
func (p Product) IDText() string { return Wrap(p.ID).Text() }

func (v Variation) IDText() string { return Wrap(v.ID).Text() }

// ImageURLs: obrazki produktu, potem obrazek każdego wariantu, bez duplikatów.
func (p Product) ImageURLs() []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(src string) {
		if !hasText(src) {
			return
		}
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	for _, img := range p.Images {
		add(img.Src)
	}
	for _, v := range p.VariationDetails {
		if v.Image != nil {
			add(v.Image.Src)
		}
	}
	return out
}
