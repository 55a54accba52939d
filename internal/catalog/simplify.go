package catalog

import "strings"

const sourceAPI = "api"

// SimplifyProduct buduje kanoniczny Product z surowego rekordu Store API.
// VariationDetails zostaje puste; uzupełnia je wywołujący dla produktów
// wariantowych.
func SimplifyProduct(raw Value, siteRoot string) Product {
	hint := raw.Get("raw")

	images := make([]Image, 0, raw.Get("images").Len())
	for _, item := range raw.Get("images").Items() {
		if !item.IsObject() {
			continue
		}
		src := ResolveURL(item.Get("src").Text(), siteRoot)
		if src == "" {
			continue
		}
		images = append(images, Image{
			ID:        item.Get("id").Raw(),
			Src:       src,
			Thumbnail: item.Get("thumbnail").Text(),
			Srcset:    item.Get("srcset").Text(),
			Sizes:     item.Get("sizes").Text(),
			Name:      item.Get("name").Text(),
			Alt:       item.Get("alt").Text(),
		})
	}

	var rawHint ProductRaw
	if raw.Has("has_options") {
		b := raw.Get("has_options").Truthy()
		rawHint.HasOptions = &b
	}
	if vs := raw.Get("variations"); vs.IsSequence() {
		rawHint.Variations = vs.Raw().([]any)
	}

	productType := strings.ToLower(raw.Get("type").Text())
	if !raw.Get("type").Truthy() {
		productType = "simple"
	}

	return Product{
		ID:                raw.Get("id").Raw(),
		Name:              raw.Get("name").Text(),
		Slug:              raw.Get("slug").Text(),
		Type:              productType,
		Permalink:         raw.Get("permalink").Text(),
		Description:       raw.Get("description").Text(),
		ShortDescription:  raw.Get("short_description").Text(),
		SKU:               raw.Get("sku").Text(),
		StockStatus:       raw.Get("stock_status").Text(),
		CatalogVisibility: raw.Get("catalog_visibility").Text(),
		TaxStatus:         raw.Get("tax_status").Text(),
		IsFeatured:        raw.Get("is_featured").Truthy(),
		IsInStock:         TristateOf(raw.Get("is_in_stock")).Ptr(),
		Prices:            NormalizePriceSet(raw),
		Categories:        MergeTerms(raw.Get("categories"), hint.Get("categories")),
		Tags:              MergeTerms(raw.Get("tags"), hint.Get("tags")),
		Attributes:        MergeAttributes(raw.Get("attributes"), hint.Get("attributes")),
		Images:            images,
		VariationDetails:  []Variation{},
		Raw:               rawHint,
	}
}

// SimplifyVariation buduje kanoniczny Variation.
func SimplifyVariation(raw Value, siteRoot string) Variation {
	prices := NormalizePriceSet(raw)
	imageSrc := variationImageSrc(raw, siteRoot)

	var image *Image
	if imageSrc != "" {
		image = &Image{Src: imageSrc}
	}

	var images []string
	if own := raw.Get("images"); own.Truthy() {
		images = ResolveImageURLs(own, siteRoot)
	} else if image != nil {
		images = []string{image.Src}
	} else {
		images = []string{}
	}

	return Variation{
		ID:          raw.Get("id").Raw(),
		Name:        raw.Get("name").Text(),
		SKU:         raw.Get("sku").Text(),
		Description: raw.Get("description").Text(),
		StockStatus: raw.Get("stock_status").Text(),
		IsInStock:   TristateOf(raw.Get("is_in_stock")).Ptr(),
		TaxStatus:   raw.Get("tax_status").Text(),
		Prices:      prices,
		Attributes:  MergeAttributes(raw.Get("attributes"), Value{}),
		Image:       image,
		Images:      images,
		Raw:         raw.Raw(),
		Diagnostics: Diagnostics{
			MissingPrice: !hasText(prices.RegularPrice) && !hasText(prices.Price),
			MissingImage: imageSrc == "",
			PriceSource:  sourceAPI,
			ImageSource:  sourceAPI,
		},
	}
}

// variationImageSrc: pierwszy adres z image/images (także z zagnieżdżonego
// "raw"), który da się rozwiązać.
func variationImageSrc(raw Value, siteRoot string) string {
	candidates := CollectImageURLs(raw.Get("image"))
	candidates = append(candidates, CollectImageURLs(raw.Get("images"))...)
	if nested := raw.Get("raw"); nested.IsObject() {
		candidates = append(candidates, CollectImageURLs(nested.Get("image"))...)
		candidates = append(candidates, CollectImageURLs(nested.Get("images"))...)
	}
	for _, c := range candidates {
		if abs := ResolveURL(c, siteRoot); abs != "" {
			return abs
		}
	}
	return ""
}
