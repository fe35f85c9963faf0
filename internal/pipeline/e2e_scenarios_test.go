package pipeline

import (
	"context"
	"testing"

	"dealsscannerpro/internal/models"
)

// This file runs six named end-to-end scenarios covering the retailer/
// price/clustering/dedup edge cases, one test per scenario.

// Scenario 1: Netto whole-kroner.
func TestScenario_NettoWholeKroner(t *testing.T) {
	layout := func(pdfBytes []byte) ([]models.Page, error) {
		spans := []models.Span{
			{Text: "MÆLK øko 1 L", Line: 12, FontSize: 14, Page: 1, BBox: models.BBox{X0: 0.10}},
			{Text: "Arla Lærkevang", Line: 13, FontSize: 10, Page: 1, BBox: models.BBox{X0: 0.10}},
			{Text: "15", Line: 14, FontSize: 64, Page: 1, BBox: models.BBox{X0: 0.10}},
			{Text: ".-", Line: 14, FontSize: 32, Page: 1, BBox: models.BBox{X0: 0.12}},
		}
		return []models.Page{{Number: 1, Width: 595, Height: 842, Spans: spans}}, nil
	}
	s := NewScanner(Services{Layout: layout, Normalize: NewNormalizer(nil, nil)})
	result, err := s.Scan(context.Background(), nil, "flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d: %+v", len(result.Offers), result.Offers)
	}
	offer := result.Offers[0]
	if offer.Price != 15.00 {
		t.Errorf("price = %v, want 15.00", offer.Price)
	}
	if offer.Product != "MÆLK øko 1 L Arla Lærkevang" {
		t.Errorf("product = %q, want the price remnant stripped off the merged lines", offer.Product)
	}
	if offer.AmountValue == nil || *offer.AmountValue != 1 {
		t.Errorf("amount value = %v, want 1", offer.AmountValue)
	}
	if offer.AmountUnit != models.UnitLiter {
		t.Errorf("amount unit = %q, want l", offer.AmountUnit)
	}
	if offer.UnitPriceValue == nil || *offer.UnitPriceValue != 15.00 {
		t.Errorf("unit price = %v, want 15.00 kr/L", offer.UnitPriceValue)
	}
	// Rule-based brand extraction is prefix-anchored and the merged line
	// starts with the all-caps "MÆLK", not "Arla" — brand/sku_key depend on
	// the LM path, which this unconfigured Normalizer never exercises, so
	// they are not asserted here.
	if offer.Status != models.StatusPublished && offer.Status != models.StatusNeedsReview {
		t.Errorf("status = %q, want published or needs_review", offer.Status)
	}
}

// Scenario 2: Netto øre price.
func TestScenario_NettoOerePrice(t *testing.T) {
	spans := []models.Span{
		{Text: "29", Line: 0, FontSize: 58, Page: 1, BBox: models.BBox{X0: 0.1}},
		{Text: "95", Line: 0, FontSize: 22, Page: 1, BBox: models.BBox{X0: 0.12}},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyNetto})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d: %+v", len(anchors), anchors)
	}
	if anchors[0].Value != 29.95 {
		t.Errorf("price = %v, want 29.95", anchors[0].Value)
	}
}

// Scenario 3: Rema dash-suffix price.
func TestScenario_RemaDashSuffixPrice(t *testing.T) {
	spans := []models.Span{
		{Text: "49,-", Line: 0, FontSize: 56, Page: 1, BBox: models.BBox{X0: 0.1}},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyRema})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d: %+v", len(anchors), anchors)
	}
	if anchors[0].Value != 49.00 {
		t.Errorf("price = %v, want 49.00", anchors[0].Value)
	}
}

// Scenario 4: column split without an intervening price.
func TestScenario_ColumnSplitWithoutPrice(t *testing.T) {
	spans := []models.Span{
		{Text: "Æbler", Line: 20, Page: 1, BBox: models.BBox{X0: 0.12}},
		{Text: "Pærer", Line: 21, Page: 1, BBox: models.BBox{X0: 0.55}},
	}
	blocks := ClusterBlocks(1, spans, nil, noSkip, 595)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks from the column jump, got %d: %+v", len(blocks), blocks)
	}
}

// Scenario 5: skip-line rejection.
func TestScenario_SkipLineRejection(t *testing.T) {
	layout := func(pdfBytes []byte) ([]models.Page, error) {
		spans := []models.Span{
			{Text: "Scan QR koden", Line: 0, Page: 1},
		}
		return []models.Page{{Number: 1, Spans: spans}}, nil
	}
	s := NewScanner(Services{Layout: layout, Normalize: NewNormalizer(nil, nil)})
	result, err := s.Scan(context.Background(), nil, "flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 0 {
		t.Errorf("expected zero offers for a skip-only block, got %d: %+v", len(result.Offers), result.Offers)
	}
}

// Scenario 6: duplicate flagging across pages.
func TestScenario_DuplicateFlaggingAcrossPages(t *testing.T) {
	productSpans := func(page int) []models.Span {
		return []models.Span{
			{Text: "Kaffe Guld", Line: 0, FontSize: 10, Page: page, BBox: models.BBox{X0: 0.1}},
			{Text: "29", Line: 1, FontSize: 58, Page: page, BBox: models.BBox{X0: 0.1}},
			{Text: "95", Line: 1, FontSize: 22, Page: page, BBox: models.BBox{X0: 0.12}},
		}
	}
	layout := func(pdfBytes []byte) ([]models.Page, error) {
		return []models.Page{
			{Number: 3, Width: 595, Height: 842, Spans: productSpans(3)},
			{Number: 7, Width: 595, Height: 842, Spans: productSpans(7)},
		}, nil
	}
	s := NewScanner(Services{Layout: layout, Normalize: NewNormalizer(nil, nil)})
	result, err := s.Scan(context.Background(), nil, "flyer.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d: %+v", len(result.Offers), result.Offers)
	}
	first, second := result.Offers[0], result.Offers[1]
	if first.IsDuplicate {
		t.Error("expected the first-seen offer to not be flagged as a duplicate")
	}
	if !second.IsDuplicate {
		t.Error("expected the second occurrence to be flagged as a duplicate")
	}
	if second.FirstSeenPage != 3 {
		t.Errorf("first seen page = %d, want 3", second.FirstSeenPage)
	}
	if first.SKUKey == "" || first.SKUKey != second.SKUKey {
		t.Errorf("expected both offers to share a sku_key, got %q vs %q", first.SKUKey, second.SKUKey)
	}
}
