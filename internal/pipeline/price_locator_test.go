package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func TestLocatePrices_NettoWholeKroner(t *testing.T) {
	spans := []models.Span{
		{Text: "Frisk kylling", Line: 0, FontSize: 10, BBox: models.BBox{X0: 10}},
		{Text: "25", Line: 1, FontSize: 60, BBox: models.BBox{X0: 10}},
		{Text: ".-", Line: 1, FontSize: 60, BBox: models.BBox{X0: 30}},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyNetto})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d: %+v", len(anchors), anchors)
	}
	if anchors[0].Value != 25 {
		t.Errorf("value = %v, want 25", anchors[0].Value)
	}
	if anchors[0].Origin != models.PriceOriginLargeFontNumeric {
		t.Errorf("origin = %v, want large-font-numeric", anchors[0].Origin)
	}
}

func TestLocatePrices_NettoOerePrice(t *testing.T) {
	spans := []models.Span{
		{Text: "19", Line: 0, FontSize: 60, BBox: models.BBox{X0: 10}},
		{Text: "95", Line: 0, FontSize: 30, BBox: models.BBox{X0: 30}},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyNetto})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	if anchors[0].Value != 19.95 {
		t.Errorf("value = %v, want 19.95", anchors[0].Value)
	}
	if anchors[0].Origin != models.PriceOriginDecimalLiteral {
		t.Errorf("origin = %v, want decimal-literal", anchors[0].Origin)
	}
}

func TestLocatePrices_RemaDashSuffix(t *testing.T) {
	spans := []models.Span{
		{Text: "Oksekød hakket", Line: 0, FontSize: 10},
		{Text: "39,-", Line: 1, FontSize: 60},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyRema})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	if anchors[0].Value != 39 {
		t.Errorf("value = %v, want 39", anchors[0].Value)
	}
	if anchors[0].Origin != models.PriceOriginTextualDashForm {
		t.Errorf("origin = %v, want textual-dash-form", anchors[0].Origin)
	}
}

func TestLocatePrices_RemaDecimalLiteral(t *testing.T) {
	spans := []models.Span{
		{Text: "24,95", Line: 0, FontSize: 60},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyRema})
	if len(anchors) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(anchors))
	}
	if anchors[0].Value != 24.95 {
		t.Errorf("value = %v, want 24.95", anchors[0].Value)
	}
}

func TestLocatePrices_NoSuffixNoAnchor(t *testing.T) {
	spans := []models.Span{
		{Text: "25", Line: 0, FontSize: 60},
		{Text: "stk", Line: 0, FontSize: 10},
	}
	anchors := LocatePrices(spans, 1, &models.RetailerProfile{Family: models.FamilyNetto})
	if len(anchors) != 0 {
		t.Fatalf("expected no anchor without a kroner suffix, got %+v", anchors)
	}
}
