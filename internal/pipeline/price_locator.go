package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"dealsscannerpro/internal/models"
)

// kroneSuffixes are the whole-kroner dash/period suffixes that close a
// price register started by a large-font digit span.
var kroneSuffixes = map[string]bool{
	".-": true,
	"-":  true,
	".":  true,
	",-": true,
}

// oereDigitsRegex matches a trimmed two-digit øre-part span.
var oereDigitsRegex = regexp.MustCompile(`^\d{2}$`)

// largeFontIntegerRegex matches a trimmed 1-3 digit kroner-part span.
var largeFontIntegerRegex = regexp.MustCompile(`^\d{1,3}$`)

// remaDirectPriceRegex matches the Rema-family direct price forms: "N,-",
// "N.-", "N,NN", "N.NN", or "N.−" (minus sign variant), grounded on
// rema_scanner.py's combined dash/decimal-literal pattern.
var remaDirectPriceRegex = regexp.MustCompile(`^(\d+)\s*[.,]\s*(-|−|\d{2})$`)

type priceRegister struct {
	active bool
	kroner int
	line   int
	x      float64
}

// LocatePrices walks a page's spans in layout order, maintaining a
// one-slot font-tier register for the kroner/øre split, and emits the
// ordered PriceAnchors it reconstructs.
func LocatePrices(spans []models.Span, page int, profile *models.RetailerProfile) []models.PriceAnchor {
	largeMin := 50.0
	oereMin, oereMax := 20.0, 50.0
	family := models.FamilyNetto
	if profile != nil {
		if profile.LargeFontMinPT > 0 {
			largeMin = profile.LargeFontMinPT
		}
		if profile.OereFontMinPT > 0 {
			oereMin = profile.OereFontMinPT
		}
		if profile.OereFontMaxPT > 0 {
			oereMax = profile.OereFontMaxPT
		}
		family = profile.Family
	}

	var anchors []models.PriceAnchor
	var reg priceRegister

	for _, sp := range spans {
		text := strings.TrimSpace(sp.Text)
		if text == "" {
			continue
		}

		if family == models.FamilyRema {
			if m := remaDirectPriceRegex.FindStringSubmatch(text); m != nil && sp.FontSize >= largeMin {
				if v, ok := parseDirectRemaPrice(m); ok {
					anchors = append(anchors, models.PriceAnchor{
						Value:  v,
						Page:   page,
						Line:   sp.Line,
						X:      sp.BBox.X0,
						Origin: models.PriceOriginTextualDashForm,
					})
					reg = priceRegister{}
					continue
				}
			}
		}

		switch {
		case sp.FontSize >= largeMin && largeFontIntegerRegex.MatchString(text):
			// A new kroner span overwrites the register without emitting.
			n, err := strconv.Atoi(text)
			if err == nil {
				reg = priceRegister{active: true, kroner: n, line: sp.Line, x: sp.BBox.X0}
			}

		case reg.active && sp.Line == reg.line && kroneSuffixes[text]:
			anchors = append(anchors, models.PriceAnchor{
				Value:  float64(reg.kroner),
				Page:   page,
				Line:   reg.line,
				X:      reg.x,
				Origin: models.PriceOriginLargeFontNumeric,
			})
			reg = priceRegister{}

		case reg.active && sp.Line == reg.line && sp.FontSize >= oereMin && sp.FontSize < oereMax && oereDigitsRegex.MatchString(text):
			oere, err := strconv.Atoi(text)
			if err == nil {
				anchors = append(anchors, models.PriceAnchor{
					Value:  float64(reg.kroner) + float64(oere)/100,
					Page:   page,
					Line:   reg.line,
					X:      reg.x,
					Origin: models.PriceOriginDecimalLiteral,
				})
				reg = priceRegister{}
			}
		}
	}

	return anchors
}

func parseDirectRemaPrice(m []string) (float64, bool) {
	whole, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] == "-" || m[2] == "−" {
		return float64(whole), true
	}
	frac, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return float64(whole) + float64(frac)/100, true
}
