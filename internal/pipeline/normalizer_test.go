package pipeline

import (
	"context"
	"testing"

	"dealsscannerpro/internal/models"
)

func TestNormalize_RuleFallback_NoClient(t *testing.T) {
	n := NewNormalizer(nil, nil)
	product := n.Normalize(context.Background(), "Arla Mælk 1 l", floatPtr(10))

	if product.Product != "Arla Mælk 1 l" {
		t.Errorf("product = %q", product.Product)
	}
	if product.Brand == "" || product.Brand[:4] != "Arla" {
		t.Errorf("brand = %q, want it to start with Arla", product.Brand)
	}
	if product.AmountValue == nil || *product.AmountValue != 1 {
		t.Errorf("amount value = %v, want 1", product.AmountValue)
	}
	if product.AmountUnit != models.UnitLiter {
		t.Errorf("amount unit = %q, want l", product.AmountUnit)
	}
}

func TestNormalize_BrandBlacklisted(t *testing.T) {
	n := NewNormalizer(nil, nil)
	product := n.Normalize(context.Background(), "Frisk laks", nil)
	if product.Brand != "" {
		t.Errorf("expected no brand for a blacklisted adjective, got %q", product.Brand)
	}
}

func TestNormalize_IsCached(t *testing.T) {
	n := NewNormalizer(nil, nil)
	ctx := context.Background()
	first := n.Normalize(ctx, "Mælk 1 l", floatPtr(10))
	second := n.Normalize(ctx, "Mælk 1 l", floatPtr(10))
	if first.Product != second.Product {
		t.Errorf("expected a cached, identical result")
	}
	if _, ok := n.cache.get(cacheKey("Mælk 1 l", floatPtr(10))); !ok {
		t.Error("expected the normalize result to be cached")
	}
}

func TestNormalizeUnitSynonym(t *testing.T) {
	tests := map[string]models.AmountUnit{
		"gram": models.UnitGram, "kilo": models.UnitKilogram, "liter": models.UnitLiter,
		"styk": models.UnitPiece, "ukendt": "",
	}
	for in, want := range tests {
		if got := normalizeUnitSynonym(in); got != want {
			t.Errorf("normalizeUnitSynonym(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeCategorySource struct {
	keywords map[string][]string
}

func (f fakeCategorySource) Names() []string {
	names := make([]string, 0, len(f.keywords))
	for k := range f.keywords {
		names = append(names, k)
	}
	return names
}

func (f fakeCategorySource) KeywordsByName() map[string][]string { return f.keywords }

func TestNormalize_CategoryFromCustomSource(t *testing.T) {
	src := fakeCategorySource{keywords: map[string][]string{"Mejeri": {"mælk", "ost"}}}
	n := NewNormalizer(nil, src)
	product := n.Normalize(context.Background(), "Frisk mælk", nil)
	if product.Category != "Mejeri" {
		t.Errorf("category = %q, want Mejeri", product.Category)
	}
}
