package pipeline

import (
	"context"
	"strconv"
	"strings"

	"dealsscannerpro/internal/models"
)

// ScannerVersion is stamped on every ScanStats so a downstream consumer can
// tell which revision of the extraction logic produced a given ScanResult.
const ScannerVersion = "dealsscannerpro-scanner-2.0.0"

// CropFunc renders and (optionally) uploads the crop image for one Offer's
// bounding box, returning a URL on success. Collaborators that cannot reach
// storage should return (nil, err); the scanner treats that as "no crop",
// never as a scan failure.
type CropFunc func(pdfBytes []byte, page int, bbox models.BBox, retailer string, productText string) (*string, error)

// Services bundles the Scanner's collaborators so none of them are reached
// for as package-level singletons: every dependency is explicit at
// construction.
type Services struct {
	// Layout defaults to ExtractLayout when nil.
	Layout func(pdfBytes []byte) ([]models.Page, error)
	// Normalize is required.
	Normalize *Normalizer
	// Crop is optional; nil disables crop generation entirely.
	Crop CropFunc
}

// Scanner wires components A-H into the single external entrypoint:
// scan(pdf_bytes, source_file_name?) -> ScanResult.
type Scanner struct {
	services Services
}

// NewScanner builds a Scanner from its collaborators.
func NewScanner(services Services) *Scanner {
	if services.Layout == nil {
		services.Layout = ExtractLayout
	}
	return &Scanner{services: services}
}

// Scan implements the full A-H pipeline for one PDF. It never returns an
// error for a structurally valid document with zero surviving offers
// (an empty result is a valid result); the only error path is a document
// that cannot be decoded at all (InvalidDocument).
func (s *Scanner) Scan(ctx context.Context, pdfBytes []byte, sourceFileName string) (models.ScanResult, error) {
	pages, err := s.services.Layout(pdfBytes)
	if err != nil {
		return models.ScanResult{}, err
	}

	retailer := DetectRetailer(pages)
	validity := DetectValidity(pages)

	profile := &models.RetailerProfile{ID: retailer.Retailer, Family: retailer.Family}
	if profile.Family == "" {
		profile.Family = models.FamilyNetto
	}

	var allOffers []models.Offer
	totalBlocks := 0
	offersDetected := 0

	for _, page := range pages {
		anchors := LocatePrices(page.Spans, page.Number, profile)

		skipLine := skipLineIndex(page.Spans, profile.Family)
		blocks := ClusterBlocks(page.Number, page.Spans, anchors, skipLine, page.Width)
		totalBlocks += len(blocks)

		for _, block := range blocks {
			offer, attempted, ok := s.processBlock(ctx, block, profile.Family, sourceFileName)
			if attempted {
				offersDetected++
			}
			if ok {
				if s.services.Crop != nil {
					if url, cerr := s.services.Crop(pdfBytes, block.Page, block.BBox, string(retailer.Retailer), offer.Product); cerr == nil {
						offer.CropURL = url
					}
				}
				allOffers = append(allOffers, offer)
			}
		}
	}

	DeduplicateRun(allOffers)

	result := models.ScanResult{
		Version: "2.0",
		Meta: models.Meta{
			Retailer:           string(retailer.Retailer),
			RetailerConfidence: retailer.Confidence,
			ValidFrom:          validity.ValidFrom,
			ValidTo:            validity.ValidTo,
			ValidityConfidence: validity.Confidence,
			SourceFile:         sourceFileName,
			DetectionReason:    retailer.Reason,
		},
		Stats: models.ScanStats{
			TotalPages:      len(pages),
			TotalBlocks:     totalBlocks,
			OffersDetected:  offersDetected,
			OffersExtracted: len(allOffers),
			ScannerVersion:  ScannerVersion,
		},
		Offers: allOffers,
	}
	return result, nil
}

// processBlock runs Text Hygiene, Normalization, and Derivation for one
// clustered block. attempted reports whether the block yielded a non-empty
// product name, so an extraction was attempted at all (used for
// offers_detected); a name that then fails validation still counts as
// attempted. ok reports whether a finished Offer survived.
func (s *Scanner) processBlock(ctx context.Context, block models.OfferBlock, family models.RetailerFamily, sourceFileName string) (models.Offer, bool, bool) {
	lines := blockLineTexts(block)
	merged := MergeProductName(lines, family)
	if merged == "" {
		return models.Offer{}, false, false
	}

	cleaned := CleanProductName(merged)
	product, variants := ParseVariants(cleaned)
	if strings.TrimSpace(product) == "" {
		return models.Offer{}, false, false
	}

	var price *float64
	hasPrice := block.Price != nil
	if hasPrice {
		v := block.Price.Value
		price = &v
	}

	if hasPrice && !IsValidProduct(ValidationInput{Product: product, Confidence: 1.0, HasPrice: true}) {
		return models.Offer{}, true, false
	}

	normalized := s.services.Normalize.Normalize(ctx, product, price)

	if !hasPrice && !IsValidProduct(ValidationInput{Product: product, Confidence: normalized.Confidence, HasPrice: false}) {
		return models.Offer{}, true, false
	}

	mergeHygieneSignals(&normalized, variants, lines)

	input := DerivationInput{
		RawText:             cleaned,
		Price:               price,
		DetectionConfidence: block.Detect.Confidence,
		Product:             normalized,
		Page:                block.Page,
		BBox:                block.BBox,
		TextLines:           lines,
		SourceFile:          sourceFileName,
	}

	offer, ok := Derive(input)
	return offer, true, ok
}

// mergeHygieneSignals folds the Text Hygiene stage's own readings into the
// NormalizedProduct wherever the Normalizer left a field empty: variant
// split happens before normalization so the Normalizer never sees the
// stripped-off variant text, and quantity/comment fall back to a regex
// reading when the LM/rule path found nothing.
func mergeHygieneSignals(product *models.NormalizedProduct, variants []string, lines []string) {
	if product.Variant == "" && len(variants) > 0 {
		product.Variant = variants[0]
		product.Variants = variants
	}
	if product.AmountValue == nil {
		if reading, ok := ExtractQuantity(lines); ok {
			if v, err := parseDanishFloat(reading.RawValue); err == nil {
				product.AmountValue = &v
				product.AmountUnit = normalizeUnitSynonym(reading.Unit)
			}
		}
	}
	if product.Comment == "" {
		if comment, ok := ExtractComment(lines); ok {
			product.Comment = comment
		}
	}
}

func parseDanishFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
}

// skipLineIndex builds the per-line skip predicate ClusterBlocks needs, by
// concatenating each line's spans once and running Text Hygiene's skip-line
// rules over the joined text.
func skipLineIndex(spans []models.Span, family models.RetailerFamily) func(int) bool {
	byLine := map[int]*strings.Builder{}
	var order []int
	for _, sp := range spans {
		b, ok := byLine[sp.Line]
		if !ok {
			b = &strings.Builder{}
			byLine[sp.Line] = b
			order = append(order, sp.Line)
		} else {
			b.WriteString(" ")
		}
		b.WriteString(sp.Text)
	}
	skip := make(map[int]bool, len(order))
	for _, idx := range order {
		skip[idx] = IsSkipLine(byLine[idx].String(), family)
	}
	return func(lineIdx int) bool { return skip[lineIdx] }
}

// blockLineTexts flattens a block's member spans back into one string per
// source line, in layout order, for the Text Hygiene functions that expect
// "lines" rather than raw spans.
func blockLineTexts(block models.OfferBlock) []string {
	var lines []string
	curLine := -1
	first := true
	var sb strings.Builder
	for _, sp := range block.Lines {
		if first || sp.Line != curLine {
			if !first {
				lines = append(lines, strings.TrimSpace(sb.String()))
				sb.Reset()
			}
			curLine = sp.Line
			first = false
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(sp.Text)
	}
	if !first {
		lines = append(lines, strings.TrimSpace(sb.String()))
	}
	return lines
}
