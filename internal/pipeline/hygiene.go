package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"dealsscannerpro/internal/models"
)

func skipPatternsFor(family models.RetailerFamily) []*regexp.Regexp {
	if family == models.FamilyRema {
		return remaSkipPatterns
	}
	return nettoSkipPatterns
}

// IsSkipLine reports whether a line belongs to the meta/footer, marketing,
// or in-product-residue families and must never start or merge into a
// block, nor be the product name.
func IsSkipLine(text string, family models.RetailerFamily) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, p := range skipPatternsFor(family) {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsAppOffer reports whether a line advertises an app-only price.
func IsAppOffer(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range nettoAppPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// CleanProductName strips trailing price remnants and leading
// "prisen gælder"/"gælder fra ... YYYY" prefixes.
func CleanProductName(name string) string {
	if name == "" {
		return ""
	}
	name = trailingPriceRemnant1.ReplaceAllString(name, "")
	name = trailingPriceRemnant2.ReplaceAllString(name, "")
	name = trailingPriceRemnant3.ReplaceAllString(name, "")
	name = prisenGaelderPrefix.ReplaceAllString(name, "")
	name = gaelderFraPrefix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// MergeProductName concatenates up to 4 non-skip lines from a block,
// skipping quantity-only and "pr. ..." lines, and trims trailing spaces
// and dashes. A price line such as "15 .-" is kept; CleanProductName
// strips it off the end of the merged name.
func MergeProductName(lines []string, family models.RetailerFamily) string {
	var parts []string
	for _, raw := range lines {
		text := cleanControlChars(raw)
		if text == "" {
			continue
		}
		if IsSkipLine(text, family) {
			continue
		}
		lower := strings.ToLower(text)
		if quantityLineSkip1.MatchString(lower) || quantityLineSkip2.MatchString(lower) || quantityLineSkip3.MatchString(lower) {
			continue
		}
		if len(text) > 1 {
			parts = append(parts, text)
			if len(parts) >= 4 {
				break
			}
		}
	}

	full := strings.Join(parts, " ")
	full = collapseSpaces(full)
	full = strings.TrimRight(full, " -")
	return full
}

func cleanControlChars(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	return collapseSpaces(strings.TrimSpace(b.String()))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseVariants splits "X eller Y[, Z]" into a main product and its variant
// list, or falls back to a single "/" split when both sides are long
// enough and not digit-separated.
func ParseVariants(text string) (product string, variants []string) {
	if m := ellerSplitRegex.FindStringSubmatch(text); m != nil {
		product = strings.TrimSpace(m[1])
		variantText := strings.TrimSpace(m[2])
		if strings.Contains(variantText, ",") {
			for _, v := range strings.Split(variantText, ",") {
				if v = strings.TrimSpace(v); v != "" {
					variants = append(variants, v)
				}
			}
		} else {
			variants = []string{variantText}
		}
		return product, variants
	}

	if strings.Contains(text, "/") && !digitSlashDigit.MatchString(text) {
		parts := strings.Split(text, "/")
		if len(parts) == 2 && len(parts[0]) > 3 && len(parts[1]) > 2 {
			return strings.TrimSpace(parts[0]), []string{strings.TrimSpace(parts[1])}
		}
	}

	return text, nil
}

// QuantityReading is a raw quantity value and unit lifted off a block's
// lines, before the Deriver normalizes it to a base unit.
type QuantityReading struct {
	RawValue string
	Unit     string
}

// ExtractQuantity scans block lines for the first quantity/unit token.
func ExtractQuantity(lines []string) (QuantityReading, bool) {
	for _, line := range lines {
		if m := quantityUnitRegex.FindStringSubmatch(line); m != nil {
			return QuantityReading{RawValue: m[1], Unit: strings.ToLower(m[2])}, true
		}
	}
	return QuantityReading{}, false
}

// ExtractPricePerUnit scans block lines for a "pr. kg/l/stk" unit-price
// mention, returning the matched text for the Deriver to parse further.
func ExtractPricePerUnit(lines []string) (string, bool) {
	for _, line := range lines {
		if m := pricePerUnitRegex.FindString(line); m != "" {
			return m, true
		}
	}
	return "", false
}

// ExtractComment scans block lines for a "max. N ..." limit or a
// "partivare" marker.
func ExtractComment(lines []string) (string, bool) {
	for _, line := range lines {
		if m := commentMaxRegex.FindString(line); m != "" {
			return m, true
		}
		if commentPartivare.MatchString(line) {
			return "partivare", true
		}
	}
	return "", false
}

// ValidationInput is the minimal offer shape the validator needs, decoupled
// from models.Offer so it can run before the Deriver has produced one.
type ValidationInput struct {
	Product    string
	Confidence float64
	HasPrice   bool
}

// IsValidProduct enforces the product-shape rule set: it rejects names
// shorter than 3 bytes, digit/dash-only or price-shaped names, all-caps
// banners, names starting with a lowercase letter, generic words, month
// names, instruction and cooking text, promotional prefixes, and marketing
// keywords. A name without a price also needs confidence >= 0.7, at least
// 10 bytes, and no leading conjunction. The skip-line table (IsSkipLine) is
// not consulted here.
func IsValidProduct(in ValidationInput) bool {
	product := in.Product

	if len(product) < 3 {
		return false
	}
	if pureDigitsDashes.MatchString(product) {
		return false
	}
	if digitPakSuffix.MatchString(strings.ToLower(product)) {
		return false
	}
	if dashPriceLiteral.MatchString(product) {
		return false
	}
	if decimalPriceLiteral.MatchString(product) {
		return false
	}
	if allCapsBanner.MatchString(product) && len(product) > 5 {
		return false
	}
	if embeddedDashPrice.MatchString(product) && len(product) < 10 {
		return false
	}
	if ampersandLead.MatchString(product) {
		return false
	}

	if product != "" && isLowerFirstRune(product) {
		return false
	}

	if genericWordsBlacklist[strings.ToLower(strings.TrimSpace(product))] {
		return false
	}

	if monthNamePrefix.MatchString(strings.ToLower(product)) {
		return false
	}

	lower := strings.ToLower(product)
	for _, p := range instructionPatterns {
		if p.MatchString(lower) {
			return false
		}
	}
	for _, p := range cookingPatterns {
		if p.MatchString(lower) {
			return false
		}
	}
	for _, prefix := range skipStarts {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	for _, kw := range marketingKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	if !in.HasPrice {
		if in.Confidence < 0.7 {
			return false
		}
		if len(product) < 10 {
			return false
		}
		for _, prefix := range problematicLeadingConjunctions {
			if strings.HasPrefix(lower, prefix) {
				return false
			}
		}
	}

	if in.Confidence < 0.5 && !in.HasPrice {
		return false
	}

	return true
}

func isLowerFirstRune(s string) bool {
	r := []rune(s)[0]
	return r >= 'a' && r <= 'z' || strings.ContainsRune("æøå", r)
}

func atoiSafe(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
