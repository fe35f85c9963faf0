package pipeline

import (
	"context"
	"testing"

	"dealsscannerpro/internal/models"
)

// fakeLayout builds a two-page synthetic document: page 1 carries the
// retailer/validity banner (its own block, rejected as a non-product line),
// page 2 carries one product block with a whole-kroner price, mirroring the
// Netto whole-kroner end-to-end scenario without letting the banner text
// merge into the product block (they are never on the same page).
func fakeLayout(pdfBytes []byte) ([]models.Page, error) {
	bannerSpans := []models.Span{
		{Text: "Netto tilbudsavis gælder fra mandag den 1. marts til og med søndag den 7. marts", Line: 0, FontSize: 10, Page: 1},
	}
	productSpans := []models.Span{
		{Text: "Frisk kylling", Line: 0, FontSize: 10, Page: 2, BBox: models.BBox{X0: 0.1}},
		{Text: "25", Line: 1, FontSize: 60, Page: 2, BBox: models.BBox{X0: 0.1}},
		{Text: ".-", Line: 1, FontSize: 60, Page: 2, BBox: models.BBox{X0: 0.15}},
	}
	return []models.Page{
		{Number: 1, Width: 595, Height: 842, Spans: bannerSpans},
		{Number: 2, Width: 595, Height: 842, Spans: productSpans},
	}, nil
}

func newTestScanner() *Scanner {
	normalizer := NewNormalizer(nil, nil)
	return NewScanner(Services{Layout: fakeLayout, Normalize: normalizer})
}

func TestScanner_Scan_ProducesOneOffer(t *testing.T) {
	s := newTestScanner()
	result, err := s.Scan(context.Background(), []byte("irrelevant-with-fake-layout"), "flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Meta.Retailer != string(models.RetailerNetto) {
		t.Errorf("retailer = %q, want netto", result.Meta.Retailer)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d: %+v", len(result.Offers), result.Offers)
	}
	offer := result.Offers[0]
	if offer.Price != 25 {
		t.Errorf("price = %v, want 25", offer.Price)
	}
	if offer.Product == "" {
		t.Error("expected a non-empty product name")
	}
	if offer.Trace.SourceFile != "flyer.pdf" {
		t.Errorf("source file = %q, want flyer.pdf", offer.Trace.SourceFile)
	}
	if result.Stats.ScannerVersion != ScannerVersion {
		t.Errorf("scanner version = %q, want %q", result.Stats.ScannerVersion, ScannerVersion)
	}
}

func TestScanner_Scan_LayoutErrorPropagates(t *testing.T) {
	failing := func(pdfBytes []byte) ([]models.Page, error) {
		return nil, context.DeadlineExceeded
	}
	s := NewScanner(Services{Layout: failing, Normalize: NewNormalizer(nil, nil)})
	_, err := s.Scan(context.Background(), nil, "bad.pdf")
	if err == nil {
		t.Fatal("expected the layout error to propagate")
	}
}

func TestScanner_Scan_SkipLineNeverBecomesAnOffer(t *testing.T) {
	skipOnly := func(pdfBytes []byte) ([]models.Page, error) {
		spans := []models.Span{
			{Text: "Spar 5 kr på denne vare", Line: 0, FontSize: 10, Page: 1},
		}
		return []models.Page{{Number: 1, Spans: spans}}, nil
	}
	s := NewScanner(Services{Layout: skipOnly, Normalize: NewNormalizer(nil, nil)})
	result, err := s.Scan(context.Background(), nil, "flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 0 {
		t.Errorf("expected no offers from a skip-only page, got %d", len(result.Offers))
	}
}

func TestSkipLineIndex(t *testing.T) {
	spans := []models.Span{
		{Text: "Spar", Line: 0},
		{Text: "5 kr", Line: 0},
		{Text: "Mælk", Line: 1},
	}
	skip := skipLineIndex(spans, models.FamilyNetto)
	if !skip(0) {
		t.Error("expected line 0 (\"Spar 5 kr\") to be flagged as skip")
	}
	if skip(1) {
		t.Error("expected line 1 (\"Mælk\") to not be flagged as skip")
	}
}

func TestBlockLineTexts(t *testing.T) {
	block := models.OfferBlock{
		Lines: []models.Span{
			{Text: "Frisk", Line: 0},
			{Text: "kylling", Line: 0},
			{Text: "500g", Line: 1},
		},
	}
	lines := blockLineTexts(block)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "Frisk kylling" {
		t.Errorf("line 0 = %q, want %q", lines[0], "Frisk kylling")
	}
	if lines[1] != "500g" {
		t.Errorf("line 1 = %q, want %q", lines[1], "500g")
	}
}
