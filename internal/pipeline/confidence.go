package pipeline

import (
	"fmt"
	"strings"

	"dealsscannerpro/internal/models"
)

// scoreConfidence computes the five per-factor confidence scores and their
// Danish diagnostic strings, so a needs_review offer gives a reviewer an
// actionable reason for the low score.
func scoreConfidence(in DerivationInput, hasPrice bool, priceValue float64, hasUnitPrice bool) (models.ConfidenceDetails, []string) {
	var reasons []string
	var details models.ConfidenceDetails

	switch {
	case hasPrice && priceValue > 0 && priceValue < 1:
		details.Price = 0.7
		reasons = append(reasons, "Mistænkelig lav pris (<1 kr)")
	case hasPrice && priceValue > 5000:
		details.Price = 0.6
		reasons = append(reasons, "Mistænkelig høj pris (>5000 kr)")
	case hasPrice && priceValue > 0:
		details.Price = 1.0
	default:
		details.Price = 0.0
		reasons = append(reasons, "Ingen pris fundet")
	}

	details.Detection = clamp01(in.DetectionConfidence)
	if details.Detection < 0.5 {
		reasons = append(reasons, "Lav blok-detektions confidence")
	}

	gpt := clamp01(in.Product.Confidence)
	if len(strings.TrimSpace(in.Product.Product)) >= 3 {
		gpt = maxf(gpt, 0.6)
	}
	if in.Product.Brand != "" {
		gpt = clamp01(gpt + 0.1)
	}
	if in.Product.Category != "" && in.Product.Category != "Andet" {
		gpt = clamp01(gpt + 0.05)
	}
	details.GPT = gpt
	if gpt < 0.5 {
		reasons = append(reasons, "Lav GPT-normaliserings confidence")
	}

	hasAmount := in.Product.AmountValue != nil
	switch {
	case hasAmount && *in.Product.AmountValue <= 0:
		details.Amount = 0.3
		reasons = append(reasons, "Ugyldig mængde-værdi")
	case hasAmount && !isKnownAmountUnit(in.Product.AmountUnit):
		details.Amount = 0.7
		reasons = append(reasons, fmt.Sprintf("Ukendt mængde-enhed: %s", in.Product.AmountUnit))
	case hasAmount:
		details.Amount = 1.0
	default:
		details.Amount = 0.5
		reasons = append(reasons, "Ingen mængde fundet")
	}

	completenessFields := []bool{
		hasPrice,
		in.Product.Product != "",
		hasAmount,
		in.Product.Container != "",
		hasUnitPrice,
	}
	trueCount := 0
	for _, f := range completenessFields {
		if f {
			trueCount++
		}
	}
	details.Completeness = float64(trueCount) / float64(len(completenessFields))

	if len(reasons) == 0 {
		reasons = []string{"Alle felter OK"}
	}
	return details, reasons
}

func isKnownAmountUnit(unit models.AmountUnit) bool {
	switch unit {
	case models.UnitGram, models.UnitKilogram, models.UnitMilliliter, models.UnitCentiliter,
		models.UnitDeciliter, models.UnitLiter, models.UnitPiece, models.UnitPack:
		return true
	}
	return false
}

func weightedConfidence(d models.ConfidenceDetails) float64 {
	overall := d.Price*weightPrice + d.Detection*weightDetection + d.GPT*weightLM +
		d.Amount*weightAmount + d.Completeness*weightCompleteness
	return round2(overall)
}

// applyConfidenceCaps enforces two hard caps: a record without a price
// never exceeds 0.3, and one without a product name never exceeds 0.5.
func applyConfidenceCaps(overall float64, hasPrice bool, product string) float64 {
	if !hasPrice {
		overall = minf(overall, 0.3)
	}
	if strings.TrimSpace(product) == "" {
		overall = minf(overall, 0.5)
	}
	return overall
}

func statusFromConfidence(confidence float64) models.OfferStatus {
	switch {
	case confidence >= 0.9:
		return models.StatusPublished
	case confidence >= 0.5:
		return models.StatusNeedsReview
	default:
		return models.StatusLowConfidence
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
