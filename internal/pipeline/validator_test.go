package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func TestDeduplicateRun_FlagsSamePriceAndProduct(t *testing.T) {
	offers := []models.Offer{
		{Product: "Mælk", Price: 10, Trace: models.Trace{Page: 1}},
		{Product: "mælk", Price: 10, Trace: models.Trace{Page: 3}},
		{Product: "Mælk", Price: 12, Trace: models.Trace{Page: 2}},
	}
	DeduplicateRun(offers)

	if offers[0].IsDuplicate {
		t.Error("first occurrence should not be flagged as a duplicate")
	}
	if !offers[1].IsDuplicate {
		t.Error("second occurrence at the same price should be flagged")
	}
	if offers[1].FirstSeenPage != 1 {
		t.Errorf("first seen page = %d, want 1", offers[1].FirstSeenPage)
	}
	if offers[2].IsDuplicate {
		t.Error("a different price should not be flagged as a duplicate")
	}
}

func TestDeduplicateRun_EmptyRun(t *testing.T) {
	var offers []models.Offer
	DeduplicateRun(offers)
	if len(offers) != 0 {
		t.Errorf("expected no offers, got %d", len(offers))
	}
}
