package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func TestScoreConfidence_SuspiciousLowPrice(t *testing.T) {
	in := DerivationInput{Product: models.NormalizedProduct{Product: "Mælk", Confidence: 0.9}}
	details, reasons := scoreConfidence(in, true, 0.5, false)
	if details.Price != 0.7 {
		t.Errorf("price score = %v, want 0.7", details.Price)
	}
	if !containsString(reasons, "Mistænkelig lav pris (<1 kr)") {
		t.Errorf("expected the low-price reason, got %v", reasons)
	}
}

func TestScoreConfidence_SuspiciousHighPrice(t *testing.T) {
	in := DerivationInput{Product: models.NormalizedProduct{Product: "Mælk"}}
	details, _ := scoreConfidence(in, true, 6000, false)
	if details.Price != 0.6 {
		t.Errorf("price score = %v, want 0.6", details.Price)
	}
}

func TestScoreConfidence_NoPrice(t *testing.T) {
	in := DerivationInput{Product: models.NormalizedProduct{Product: "Mælk"}}
	details, reasons := scoreConfidence(in, false, 0, false)
	if details.Price != 0 {
		t.Errorf("price score = %v, want 0", details.Price)
	}
	if !containsString(reasons, "Ingen pris fundet") {
		t.Errorf("expected no-price reason, got %v", reasons)
	}
}

func TestApplyConfidenceCaps(t *testing.T) {
	if got := applyConfidenceCaps(0.95, false, "Mælk"); got > 0.3 {
		t.Errorf("no-price cap failed: got %v", got)
	}
	if got := applyConfidenceCaps(0.95, true, ""); got > 0.5 {
		t.Errorf("no-product cap failed: got %v", got)
	}
	if got := applyConfidenceCaps(0.95, true, "Mælk"); got != 0.95 {
		t.Errorf("expected no cap to apply, got %v", got)
	}
}

func TestStatusFromConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		want       models.OfferStatus
	}{
		{0.95, models.StatusPublished},
		{0.9, models.StatusPublished},
		{0.7, models.StatusNeedsReview},
		{0.5, models.StatusNeedsReview},
		{0.2, models.StatusLowConfidence},
	}
	for _, tt := range tests {
		if got := statusFromConfidence(tt.confidence); got != tt.want {
			t.Errorf("statusFromConfidence(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
