package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Color":             "color",
		"pa_color":          "color",
		"attribute_pa_size": "size",
		"  Big  Size!! ":    "big-size",
		"Rozmiar/Wzór":      "rozmiar-wz-r",
		"---":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "shop.example.com", SanitizeSegment("shop.example.com"))
	assert.Equal(t, "a-b-c", SanitizeSegment(" a / b ? c "))
	assert.Equal(t, "item", SanitizeSegment("///"))
	assert.Equal(t, "item", SanitizeSegment(""))
}

func TestNormalizeSiteRoot(t *testing.T) {
	root, err := NormalizeSiteRoot("https://shop.example.com/sklep/?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/", root)

	_, err = NormalizeSiteRoot("ftp://shop.example.com")
	assert.Error(t, err)

	_, err = NormalizeSiteRoot("https:///nohost")
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	root := "https://shop.example.com/"
	assert.Equal(t, "https://shop.example.com/wp-content/a.jpg", ResolveURL("/wp-content/a.jpg", root))
	assert.Equal(t, "https://cdn.example.com/b.jpg", ResolveURL("https://cdn.example.com/b.jpg", root))
	assert.Equal(t, "", ResolveURL("   ", root))
	assert.Equal(t, "", ResolveURL("http://[::1", root))
}

func termsToValue(t *testing.T, terms []Term) Value {
	t.Helper()
	data, err := json.Marshal(terms)
	require.NoError(t, err)
	return mustParse(t, string(data))
}

func TestMergeTerms(t *testing.T) {
	primary := mustParse(t, `[
		{"id": 7, "name": "Shirts", "slug": "shirts"},
		{"name": "Sale"},
		"Outlet",
		42,
		{"slug": "summer"},
		{}
	]`)
	secondary := mustParse(t, `[
		{"id": 7, "name": "T-Shirts", "slug": "t-shirts"},
		{"name": "sale", "slug": "sale"}
	]`)

	got := MergeTerms(primary, secondary)

	require.Len(t, got, 5)
	assert.Equal(t, "T-Shirts", got[0].Name, "last writer wins per id")
	assert.Equal(t, "t-shirts", got[0].Slug)
	assert.Equal(t, Term{Name: "sale", Slug: "sale"}, got[1], "slug collision keeps first position, last value")
	assert.Equal(t, Term{Name: "Outlet", Slug: "outlet"}, got[2])
	assert.Equal(t, Term{Name: "42", Slug: "42"}, got[3])
	assert.Equal(t, Term{Name: "summer", Slug: "summer"}, got[4])
}

func TestMergeTerms_Idempotent(t *testing.T) {
	a := mustParse(t, `[{"id": 1, "name": "A"}, {"name": "B Term"}, "c"]`)
	b := mustParse(t, `[{"id": 1, "name": "A2", "slug": "a2"}, {"slug": "d"}]`)

	once := MergeTerms(a, b)
	twice := MergeTerms(termsToValue(t, once), mustParse(t, `[]`))

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Name, twice[i].Name)
		assert.Equal(t, once[i].Slug, twice[i].Slug)
		assert.Equal(t, Wrap(once[i].ID).Text(), Wrap(twice[i].ID).Text())
	}
}

func TestMergeTerms_IgnoresNonLists(t *testing.T) {
	assert.Empty(t, MergeTerms(mustParse(t, `{"name": "x"}`), mustParse(t, `"y"`)))
}

func TestNormalizeAttribute_DedupesOptions(t *testing.T) {
	attr, ok := NormalizeAttribute(mustParse(t, `{"taxonomy":"pa_color","options":["Red","red","Blue"]}`))

	require.True(t, ok)
	assert.Equal(t, []string{"Red", "Blue"}, attr.Options)
	assert.Equal(t, "color", attr.Name)
	assert.Equal(t, "color", attr.Slug)
	assert.Equal(t, "pa_color", attr.Taxonomy)
	assert.True(t, attr.IsVisible())
	assert.True(t, attr.IsVariation())
}

func TestNormalizeAttribute_KeepsExplicitFlags(t *testing.T) {
	attr, ok := NormalizeAttribute(mustParse(t, `{"name":"Size","visible":false}`))

	require.True(t, ok)
	assert.Equal(t, Explicit(false), attr.Visible)
	assert.Equal(t, Tristate{}, attr.Variation, "absent flag stays unset")
	assert.False(t, attr.IsVisible())
	assert.True(t, attr.IsVariation())

	out, err := json.Marshal(attr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":null,"name":"Size","slug":"size","taxonomy":"pa_size","options":[],"visible":false,"variation":true}`, string(out))
}

func TestNormalizeAttribute_AllOptionSourcesContribute(t *testing.T) {
	attr, ok := NormalizeAttribute(mustParse(t, `{
		"name": "Size",
		"terms": [{"name": "S"}, {"slug": "m"}, "L", {}],
		"options": ["s", "XL"],
		"option": "XXL",
		"value": "l",
		"values": ["3XL", ""]
	}`))

	require.True(t, ok)
	assert.Equal(t, []string{"S", "m", "L", "XL", "XXL", "3XL"}, attr.Options)
	assert.Equal(t, "pa_size", attr.Taxonomy)
}

func TestNormalizeAttribute_NamesAndFlags(t *testing.T) {
	tests := []struct {
		name         string
		doc          string
		wantName     string
		wantSlug     string
		wantTaxonomy string
		visible      bool
		variation    bool
	}{
		{
			name:         "variation style attribute",
			doc:          `{"attribute": "attribute_pa_color", "value": "red"}`,
			wantName:     "color",
			wantSlug:     "color",
			wantTaxonomy: "pa_color",
			visible:      true,
			variation:    true,
		},
		{
			name:         "label and local taxonomy",
			doc:          `{"label": "Material", "taxonomy": "material", "visible": false, "variation": false}`,
			wantName:     "Material",
			wantSlug:     "material",
			wantTaxonomy: "pa_material",
			visible:      false,
			variation:    false,
		},
		{
			name:         "non bool flags count as unset",
			doc:          `{"name": "Pa_Fit", "visible": 0, "variation": "no"}`,
			wantName:     "Fit",
			wantSlug:     "fit",
			wantTaxonomy: "pa_fit",
			visible:      true,
			variation:    true,
		},
		{
			name:         "uppercase pa taxonomy kept",
			doc:          `{"name": "Brand", "taxonomy": "PA_Brand"}`,
			wantName:     "Brand",
			wantSlug:     "brand",
			wantTaxonomy: "PA_Brand",
			visible:      true,
			variation:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr, ok := NormalizeAttribute(mustParse(t, tt.doc))
			require.True(t, ok)
			assert.Equal(t, tt.wantName, attr.Name)
			assert.Equal(t, tt.wantSlug, attr.Slug)
			assert.Equal(t, tt.wantTaxonomy, attr.Taxonomy)
			assert.Equal(t, tt.visible, attr.IsVisible())
			assert.Equal(t, tt.variation, attr.IsVariation())
		})
	}
}

func TestNormalizeAttribute_Rejects(t *testing.T) {
	for _, doc := range []string{`{}`, `{"name": "  "}`, `{"name": "pa_"}`, `{"name": "!!!"}`} {
		_, ok := NormalizeAttribute(mustParse(t, doc))
		assert.False(t, ok, doc)
	}
}

func TestMergeAttributes_LongestOptionsWin(t *testing.T) {
	primary := mustParse(t, `[
		{"name": "Color", "taxonomy": "pa_color", "options": ["Red"]},
		"garbage",
		{"name": "Size", "options": ["S", "M"]}
	]`)
	secondary := mustParse(t, `[
		{"name": "colour", "taxonomy": "pa_color", "options": ["Red", "Blue"]},
		{"name": "Size", "options": ["L", "XL"]},
		{}
	]`)

	got := MergeAttributes(primary, secondary)

	require.Len(t, got, 2)
	assert.Equal(t, "colour", got[0].Name)
	assert.Equal(t, []string{"Red", "Blue"}, got[0].Options)
	assert.Equal(t, "Size", got[1].Name)
	assert.Equal(t, []string{"S", "M"}, got[1].Options, "tie keeps the first seen")
}

func TestAttributeAliasKeys(t *testing.T) {
	name, keys := Attribute{Name: "Color", Taxonomy: "pa_color", Slug: "color"}.AliasKeys()
	assert.Equal(t, "Color", name)
	assert.Equal(t, []string{"color"}, keys)

	name, keys = Attribute{Name: "Kolor Główny", Taxonomy: "pa_kolor", Slug: "kolor"}.AliasKeys()
	assert.Equal(t, "Kolor Główny", name)
	assert.Equal(t, []string{"kolor-g-wny", "kolor"}, keys)
}

func TestCollectImageURLs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"first key only", `{"src":"a.jpg","thumbnail":"b.jpg"}`, []string{"a.jpg"}},
		{"mixed list", `["x.jpg",{"src":"y.jpg"}]`, []string{"x.jpg", "y.jpg"}},
		{"fallback key order", `{"src":"", "url":" u.jpg ", "full":"f.jpg"}`, []string{"u.jpg"}},
		{"nested lists", `[["a.jpg"], [{"full_src":"b.jpg"}], null, 5]`, []string{"a.jpg", "b.jpg"}},
		{"plain string", `" s.jpg "`, []string{"s.jpg"}},
		{"number", `12`, nil},
		{"null", `null`, nil},
		{"object without keys", `{"alt":"x"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectImageURLs(mustParse(t, tt.doc)))
		})
	}
}

func TestResolveImageURLs_Dedupes(t *testing.T) {
	got := ResolveImageURLs(
		mustParse(t, `["/a.jpg", "https://shop.example.com/a.jpg", {"src": "b.jpg"}, "  "]`),
		"https://shop.example.com/",
	)
	assert.Equal(t, []string{"https://shop.example.com/a.jpg", "https://shop.example.com/b.jpg"}, got)
}
