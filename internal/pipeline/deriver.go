package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"dealsscannerpro/internal/models"
)

// DerivationInput bundles everything the Deriver needs to produce one
// Offer: the raw text and price-locator/block-clusterer signals plus the
// NormalizedProduct the Normalizer returned for it.
type DerivationInput struct {
	RawText          string
	Price            *float64
	DetectionConfidence float64
	Product          models.NormalizedProduct
	Page             int
	BBox             models.BBox
	TextLines        []string
	SourceFile       string
}

// confidenceWeights are the five factor weights, summing to 1.0.
const (
	weightPrice        = 0.35
	weightDetection    = 0.25
	weightLM           = 0.20
	weightAmount       = 0.15
	weightCompleteness = 0.05
)

// Derive implements component G: unit price, price-excl-deposit, SKU key,
// and the weighted confidence score, producing a finished Offer. Returns
// false if the input fails validation (no product, e.g.) and should be
// dropped as a PartialOffer.
func Derive(in DerivationInput) (models.Offer, bool) {
	product := in.Product
	if strings.TrimSpace(product.Product) == "" {
		return models.Offer{}, false
	}

	deposit := resolveDeposit(in.RawText, product)
	priceValue := 0.0
	hasPrice := in.Price != nil
	if hasPrice {
		priceValue = *in.Price
	}

	priceExclDeposit := calculatePriceExclDeposit(priceValue, deposit)
	unitPriceValue, unitPriceUnit := calculateUnitPrice(priceValue, deposit, product.AmountValue, product.AmountUnit, product.PackCount)

	skuKey := generateSKUKey(product)

	details, reasons := scoreConfidence(in, hasPrice, priceValue, unitPriceValue != nil)
	overall := weightedConfidence(details)
	overall = applyConfidenceCaps(overall, hasPrice, product.Product)
	status := statusFromConfidence(overall)

	offer := models.Offer{
		ID:                uuid.New().String(),
		ProductTextRaw:    in.RawText,
		Brand:             product.Brand,
		Product:           product.Product,
		Variant:           product.Variant,
		Variants:          product.Variants,
		Category:          product.Category,
		AmountValue:       product.AmountValue,
		AmountUnit:        product.AmountUnit,
		PackCount:         product.PackCount,
		Container:         product.Container,
		Price:             priceValue,
		PriceExclDeposit:  priceExclDeposit,
		UnitPriceValue:    unitPriceValue,
		UnitPriceUnit:     unitPriceUnit,
		SKUKey:            skuKey,
		Comment:           product.Comment,
		Confidence:        overall,
		ConfidenceDetails: details,
		ConfidenceReasons: reasons,
		Status:            status,
		Trace: models.Trace{
			Page:       in.Page,
			BBox:       in.BBox,
			TextLines:  in.TextLines,
			SourceFile: in.SourceFile,
		},
	}
	if deposit != nil {
		offer.Deposit = deposit
	}
	return offer, true
}

// calculateUnitPrice implements the unit-price conversion table.
// effective_price guards against a deposit subtraction that would yield a
// non-positive price: max(price - deposit, price) if the subtraction
// would yield <= 0.
func calculateUnitPrice(price float64, deposit *float64, amountValue *float64, unit models.AmountUnit, packCount *int) (*float64, models.UnitPriceUnit) {
	if price <= 0 || amountValue == nil || *amountValue <= 0 || unit == "" {
		return nil, ""
	}

	effective := price
	if deposit != nil {
		candidate := price - *deposit
		if candidate > 0 {
			effective = candidate
		}
	}

	count := 1
	if packCount != nil && *packCount > 0 {
		count = *packCount
	}
	totalAmount := *amountValue * float64(count)
	if totalAmount <= 0 {
		return nil, ""
	}

	var value float64
	var unitLabel models.UnitPriceUnit

	switch unit {
	case models.UnitMilliliter:
		value = effective / (totalAmount / 1000)
		unitLabel = models.UnitPriceKrPerLiter
	case models.UnitCentiliter:
		value = effective / (totalAmount / 100)
		unitLabel = models.UnitPriceKrPerLiter
	case models.UnitDeciliter:
		value = effective / (totalAmount / 10)
		unitLabel = models.UnitPriceKrPerLiter
	case models.UnitLiter:
		value = effective / totalAmount
		unitLabel = models.UnitPriceKrPerLiter
	case models.UnitGram:
		value = effective / (totalAmount / 1000)
		unitLabel = models.UnitPriceKrPerKilo
	case models.UnitKilogram:
		value = effective / totalAmount
		unitLabel = models.UnitPriceKrPerKilo
	case models.UnitPiece, models.UnitPack:
		value = effective / totalAmount
		unitLabel = models.UnitPriceKrPerPiece
	default:
		return nil, ""
	}

	rounded := round2(value)
	return &rounded, unitLabel
}

// calculatePriceExclDeposit computes price - deposit, clamped to price if
// the result is <= 0 or deposit is absent.
func calculatePriceExclDeposit(price float64, deposit *float64) float64 {
	if deposit == nil || *deposit <= 0 {
		return round2(price)
	}
	result := price - *deposit
	if result <= 0 {
		return round2(price)
	}
	return round2(result)
}

// resolveDeposit returns the normalizer's deposit when it supplied one.
// Otherwise, only when the raw text mentions "pant", it estimates one from
// the Danish deposit rates (1.00 per can; 3.00 per bottle of at least 1 L,
// else 1.00 per bottle) multiplied by the pack count.
func resolveDeposit(rawText string, product models.NormalizedProduct) *float64 {
	if product.Deposit != nil {
		return product.Deposit
	}
	if !strings.Contains(strings.ToLower(rawText), "pant") {
		return nil
	}

	count := 1
	if product.PackCount != nil && *product.PackCount > 0 {
		count = *product.PackCount
	}

	var perItem float64
	switch product.Container {
	case models.ContainerCan:
		perItem = 1.00
	case models.ContainerBottle:
		ml, ok := toMilliliters(product.AmountValue, product.AmountUnit)
		if ok && ml >= 1000 {
			perItem = 3.00
		} else {
			perItem = 1.00
		}
	default:
		return nil
	}

	total := round2(perItem * float64(count))
	return &total
}

func toMilliliters(value *float64, unit models.AmountUnit) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch unit {
	case models.UnitLiter:
		return *value * 1000, true
	case models.UnitDeciliter:
		return *value * 100, true
	case models.UnitCentiliter:
		return *value * 10, true
	case models.UnitMilliliter:
		return *value, true
	}
	return 0, false
}

// generateSKUKey builds the pipe-delimited identity string
// brand|product|variant|container|amount that matches the same product
// across flyers. Pack count is left out, so multi-packs and singles share a
// key. DeduplicateRun does not use it.
func generateSKUKey(product models.NormalizedProduct) string {
	if strings.TrimSpace(product.Product) == "" {
		return ""
	}
	parts := []string{
		skuField(product.Brand),
		skuField(product.Product),
		skuField(product.Variant),
		skuField(string(product.Container)),
		skuAmount(product.AmountValue, product.AmountUnit),
	}
	return strings.Join(parts, "|")
}

var skuDanishReplacer = strings.NewReplacer("æ", "ae", "ø", "oe", "å", "aa", "Æ", "ae", "Ø", "oe", "Å", "aa")

func skuField(text string) string {
	if strings.TrimSpace(text) == "" {
		return "null"
	}
	s := strings.ToLower(strings.TrimSpace(text))
	s = skuDanishReplacer.Replace(s)

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == ' ' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	s = strings.Join(strings.Fields(s), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "null"
	}
	return s
}

func skuAmount(value *float64, unit models.AmountUnit) string {
	if value == nil || unit == "" {
		return "null"
	}
	v := *value
	u := string(unit)
	switch unit {
	case models.UnitLiter:
		v *= 1000
		u = "ml"
	case models.UnitDeciliter:
		v *= 100
		u = "ml"
	case models.UnitCentiliter:
		v *= 10
		u = "ml"
	case models.UnitKilogram:
		v *= 1000
		u = "g"
	}
	return fmt.Sprintf("%d%s", int(math.Round(v)), u)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
