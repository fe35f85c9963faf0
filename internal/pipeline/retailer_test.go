package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func pageOf(text string) models.Page {
	return models.Page{Number: 1, Spans: []models.Span{{Text: text, Line: 0}}}
}

func TestDetectRetailer(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantID     models.RetailerID
		wantFamily models.RetailerFamily
	}{
		{"exclusive rema", "REMA 1000 tilbudsavis", models.RetailerRema1000, models.FamilyRema},
		{"exclusive foetex", "føtex tilbud denne uge", models.RetailerFoetex, models.FamilyNetto},
		{"broad netto wins on count", "netto netto netto rema", models.RetailerNetto, models.FamilyNetto},
		{"salling default", "en del af salling group", models.RetailerNetto, models.FamilyNetto},
		{"no match", "helt tomt dokument uden kendte ord", models.RetailerUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectRetailer([]models.Page{pageOf(tt.text)})
			if got.Retailer != tt.wantID {
				t.Errorf("retailer = %q, want %q", got.Retailer, tt.wantID)
			}
			if got.Family != tt.wantFamily {
				t.Errorf("family = %q, want %q", got.Family, tt.wantFamily)
			}
		})
	}
}

func TestDetectRetailer_ExclusiveBeatsBroadCount(t *testing.T) {
	// "netto" appears many times but "rema 1000" is an exclusive match and
	// must still win over the broader keyword count.
	got := DetectRetailer([]models.Page{pageOf("netto netto netto netto rema 1000 tilbud")})
	if got.Retailer != models.RetailerRema1000 {
		t.Errorf("expected exclusive match to win, got %q", got.Retailer)
	}
}
