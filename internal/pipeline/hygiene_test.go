package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func TestIsSkipLine(t *testing.T) {
	tests := []struct {
		text   string
		family models.RetailerFamily
		want   bool
	}{
		{"Spar 5 kr på denne vare", models.FamilyNetto, true},
		{"Friske danske æbler", models.FamilyNetto, false},
		{"Rema 1000 - kun denne uge", models.FamilyRema, true},
	}
	for _, tt := range tests {
		if got := IsSkipLine(tt.text, tt.family); got != tt.want {
			t.Errorf("IsSkipLine(%q, %q) = %v, want %v", tt.text, tt.family, got, tt.want)
		}
	}
}

func TestMergeProductName_SkipsSkipLines(t *testing.T) {
	lines := []string{
		"Friske danske æbler",
		"Gælder kun i uge 10",
		"500 g",
	}
	got := MergeProductName(lines, models.FamilyNetto)
	if got == "" {
		t.Fatal("expected a non-empty merged name")
	}
	if containsSubstr(got, "Gælder") || containsSubstr(got, "gælder") {
		t.Errorf("expected the skip line to be excluded, got %q", got)
	}
}

func containsSubstr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestCleanProductName_StripsSpaceJoinedPriceRemnant(t *testing.T) {
	// blockLineTexts joins same-line spans with a single space, so a
	// kroner-digit span and its terminating suffix span never typeset
	// glued together by the time CleanProductName sees them.
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dash-dot suffix", "MÆLK øko 1 L Arla Lærkevang 15 .-", "MÆLK øko 1 L Arla Lærkevang"},
		{"comma-dash suffix", "Frisk kylling 49 ,-", "Frisk kylling"},
		{"bare dash suffix", "Oksekød 25 -", "Oksekød"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanProductName(tt.in); got != tt.want {
				t.Errorf("CleanProductName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVariants_EllerSplit(t *testing.T) {
	product, variants := ParseVariants("Yoghurt natur eller vanilje")
	if product != "Yoghurt natur" {
		t.Errorf("product = %q, want %q", product, "Yoghurt natur")
	}
	if len(variants) != 1 || variants[0] != "vanilje" {
		t.Errorf("variants = %v, want [vanilje]", variants)
	}
}

func TestParseVariants_EllerSplitMultiple(t *testing.T) {
	_, variants := ParseVariants("Sodavand cola eller fanta, sprite")
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %v", variants)
	}
}

func TestParseVariants_NoSplit(t *testing.T) {
	product, variants := ParseVariants("Frisk laksefilet")
	if product != "Frisk laksefilet" || variants != nil {
		t.Errorf("expected passthrough, got product=%q variants=%v", product, variants)
	}
}

func TestExtractQuantity(t *testing.T) {
	reading, ok := ExtractQuantity([]string{"Mælk", "1 l"})
	if !ok {
		t.Fatal("expected a quantity match")
	}
	if reading.Unit != "l" {
		t.Errorf("unit = %q, want l", reading.Unit)
	}
}

func TestExtractComment_MaxLimit(t *testing.T) {
	comment, ok := ExtractComment([]string{"Kylling", "Max. 3 pr. kunde"})
	if !ok || comment == "" {
		t.Fatalf("expected a max-limit comment, got %q ok=%v", comment, ok)
	}
}

func TestExtractComment_Partivare(t *testing.T) {
	comment, ok := ExtractComment([]string{"Partivare"})
	if !ok || comment != "partivare" {
		t.Fatalf("expected partivare marker, got %q ok=%v", comment, ok)
	}
}

func TestIsValidProduct(t *testing.T) {
	tests := []struct {
		name string
		in   ValidationInput
		want bool
	}{
		{"valid with price", ValidationInput{Product: "Frisk laksefilet", Confidence: 1.0, HasPrice: true}, true},
		{"too short", ValidationInput{Product: "Ab", Confidence: 1.0, HasPrice: true}, false},
		{"pure digits", ValidationInput{Product: "123-456", Confidence: 1.0, HasPrice: true}, false},
		{"lowercase first letter", ValidationInput{Product: "laksefilet frisk", Confidence: 1.0, HasPrice: true}, false},
		{"low confidence no price", ValidationInput{Product: "Kort Produktnavn", Confidence: 0.3, HasPrice: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidProduct(tt.in); got != tt.want {
				t.Errorf("IsValidProduct(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
