package pipeline

import (
	"strings"

	"dealsscannerpro/internal/models"
)

// exclusiveKeyword is a pass-1 retailer keyword: the first match wins
// outright, at a fixed confidence, because the phrase is unambiguous.
type exclusiveKeyword struct {
	keyword    string
	retailer   models.RetailerID
	family     models.RetailerFamily
	confidence float64
}

// exclusiveKeywords is checked in order; first match wins. More-specific
// store names are listed ahead of "netto" itself since "netto" collides
// as a common Danish substring.
var exclusiveKeywords = []exclusiveKeyword{
	{keyword: "rema 1000", retailer: models.RetailerRema1000, family: models.FamilyRema, confidence: 0.98},
	{keyword: "rema1000", retailer: models.RetailerRema1000, family: models.FamilyRema, confidence: 0.98},
	{keyword: "føtex", retailer: models.RetailerFoetex, family: models.FamilyNetto, confidence: 0.97},
	{keyword: "bilka", retailer: models.RetailerBilka, family: models.FamilyNetto, confidence: 0.97},
	{keyword: "superbrugsen", retailer: models.RetailerSuperbrugsen, family: models.FamilyNetto, confidence: 0.96},
	{keyword: "eurospar", retailer: models.RetailerEuroSpar, family: models.FamilyNetto, confidence: 0.95},
}

// broadKeyword is a pass-2 retailer keyword scored by occurrence count.
type broadKeyword struct {
	keyword    string
	retailer   models.RetailerID
	family     models.RetailerFamily
	confidence float64
}

var broadKeywords = []broadKeyword{
	{keyword: "netto", retailer: models.RetailerNetto, family: models.FamilyNetto, confidence: 0.90},
	{keyword: "rema", retailer: models.RetailerRema1000, family: models.FamilyRema, confidence: 0.80},
}

// sallingDefaultConfidence is the confidence assigned when only the
// "salling" group keyword appears without a specific store name (see
// DESIGN.md for why this defaults to Netto).
const sallingDefaultConfidence = 0.70

// RetailerDetection is the result of component B's retailer pass.
type RetailerDetection struct {
	Retailer   models.RetailerID
	Family     models.RetailerFamily
	Confidence float64
	Reason     string
}

// DetectRetailer concatenates text from the first min(3, N) pages and runs
// a two-pass keyword match: exclusive store names first, group keywords
// second.
func DetectRetailer(pages []models.Page) RetailerDetection {
	n := len(pages)
	if n > 3 {
		n = 3
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		for _, sp := range pages[i].Spans {
			sb.WriteString(sp.Text)
			sb.WriteString(" ")
		}
	}
	text := strings.ToLower(sb.String())

	for _, kw := range exclusiveKeywords {
		if strings.Contains(text, kw.keyword) {
			return RetailerDetection{Retailer: kw.retailer, Family: kw.family, Confidence: kw.confidence, Reason: "exclusive-keyword:" + kw.keyword}
		}
	}

	bestScore := 0
	var best *broadKeyword
	for i := range broadKeywords {
		kw := &broadKeywords[i]
		count := strings.Count(text, kw.keyword)
		if count > bestScore {
			bestScore = count
			best = kw
		}
	}
	if best != nil {
		return RetailerDetection{Retailer: best.retailer, Family: best.family, Confidence: best.confidence, Reason: "broad-keyword:" + best.keyword}
	}

	if strings.Contains(text, "salling") {
		return RetailerDetection{Retailer: models.RetailerNetto, Family: models.FamilyNetto, Confidence: sallingDefaultConfidence, Reason: "salling-group-default"}
	}

	return RetailerDetection{Retailer: models.RetailerUnknown, Confidence: 0.0, Reason: "no-match"}
}
