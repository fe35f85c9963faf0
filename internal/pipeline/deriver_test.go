package pipeline

import (
	"testing"

	"dealsscannerpro/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestDerive_UnitPriceLiter(t *testing.T) {
	offer, ok := Derive(DerivationInput{
		RawText:             "Mælk 1 l",
		Price:               floatPtr(10),
		DetectionConfidence: 0.9,
		Product: models.NormalizedProduct{
			Product:     "Mælk",
			AmountValue: floatPtr(1),
			AmountUnit:  models.UnitLiter,
			Confidence:  0.8,
		},
	})
	if !ok {
		t.Fatal("expected Derive to succeed")
	}
	if offer.UnitPriceValue == nil || *offer.UnitPriceValue != 10 {
		t.Errorf("unit price = %v, want 10", offer.UnitPriceValue)
	}
	if offer.UnitPriceUnit != models.UnitPriceKrPerLiter {
		t.Errorf("unit price unit = %q, want kr/L", offer.UnitPriceUnit)
	}
	if offer.ID == "" {
		t.Error("expected a generated offer ID")
	}
}

func TestDerive_MissingProductFails(t *testing.T) {
	_, ok := Derive(DerivationInput{
		RawText: "",
		Product: models.NormalizedProduct{},
	})
	if ok {
		t.Error("expected Derive to fail without a product name")
	}
}

func TestDerive_DepositForCan(t *testing.T) {
	offer, ok := Derive(DerivationInput{
		RawText:             "Cola i dåse, pant",
		Price:               floatPtr(15),
		DetectionConfidence: 0.9,
		Product: models.NormalizedProduct{
			Product:   "Cola",
			Container: models.ContainerCan,
			Confidence: 0.9,
		},
	})
	if !ok {
		t.Fatal("expected Derive to succeed")
	}
	if offer.Deposit == nil || *offer.Deposit != 1.00 {
		t.Errorf("deposit = %v, want 1.00", offer.Deposit)
	}
	if offer.PriceExclDeposit != 14.00 {
		t.Errorf("price excl deposit = %v, want 14.00", offer.PriceExclDeposit)
	}
}

func TestDerive_DepositForLargeBottle(t *testing.T) {
	offer, _ := Derive(DerivationInput{
		RawText: "Sodavand flaske, pant",
		Price:   floatPtr(20),
		Product: models.NormalizedProduct{
			Product:     "Sodavand",
			Container:   models.ContainerBottle,
			AmountValue: floatPtr(1.5),
			AmountUnit:  models.UnitLiter,
		},
	})
	if offer.Deposit == nil || *offer.Deposit != 3.00 {
		t.Errorf("deposit = %v, want 3.00 for a >=1L bottle", offer.Deposit)
	}
}

func TestDerive_NoPriceCapsConfidence(t *testing.T) {
	offer, ok := Derive(DerivationInput{
		RawText: "Frisk laksefilet",
		Product: models.NormalizedProduct{Product: "Frisk laksefilet", Confidence: 1.0},
	})
	if !ok {
		t.Fatal("expected Derive to succeed even without a price")
	}
	if offer.Confidence > 0.3 {
		t.Errorf("confidence = %v, want <= 0.3 without a price", offer.Confidence)
	}
	if offer.Status != models.StatusLowConfidence {
		t.Errorf("status = %q, want low_confidence", offer.Status)
	}
}

func TestDerive_SKUKeyShape(t *testing.T) {
	offer, _ := Derive(DerivationInput{
		RawText: "Arla Mælk",
		Price:   floatPtr(10),
		Product: models.NormalizedProduct{
			Brand:       "Arla",
			Product:     "Mælk",
			Container:   models.ContainerNone,
			AmountValue: floatPtr(1),
			AmountUnit:  models.UnitLiter,
		},
	})
	want := "arla|maelk|null|null|1000ml"
	if offer.SKUKey != want {
		t.Errorf("sku key = %q, want %q", offer.SKUKey, want)
	}
}
