package pipeline

import "regexp"

// nettoSkipPatterns is the Netto-family skip-line table, carried verbatim
// (translated to Go regexps) from netto_scanner.py's SKIP_PATTERNS: meta
// and footer lines, marketing prose, and in-product residue that must
// never start or merge into a block.
var nettoSkipPatterns = compilePatterns([]string{
	`^pr\.\s*\d`,
	`^max\.\s*\d`,
	`^\d+[.,]\d+\s*kr`,
	`^spar\s`,
	`^inkl\.`,
	`^se\s+flere`,
	`^spotvarer`,
	`^gælder\s+(kun\s+)?i\s+uge`,
	`^\d+\s*kg\..*\d`,
	`^liter\s+\d`,
	`^en\s+gr[øo]n\s+jul`,
	`^\d+\s*g$`,
	`^k[øo]d\s+til\s+netto`,
	`^alle\s+skal`,
	`^ha.*r[åa]d\s+til`,
	`^[øo]kologisk\s+jul`,
	`^skyllet\s+og`,
	`^klar\s+til\s+brug`,
	`^god\s+kvalitet`,
	`^bredt\s+udvalg`,
	`^alt\s+til`,
	`^med\s+vores`,
	`^magisk\s+mejeri`,
	`^h[øo]jt\s*belagt`,
	`^rent\s+i\s+jul`,
	`^en\s+ny\s+verden`,
	`^leg\s+og\s+lur`,
	`^jo\s+flere\s+kvittering`,
	`^deltagelse\s+kræver`,
	`^forbehold\s+for`,
	`^flere\s+butikker`,
	`^de\s+viste\s+produkt`,
	`^find\s+`,
	`^vind\s+`,
	`^hvert\s+`,
	`^\*baseret`,
	`^når\s+du\s+køber`,
	`^dit\s+bidrag`,
	`^læs\s+mere`,
	`^upersonlige`,
	`^\d+-\d+$`,
	`^netto\s+jul`,
	`prisen\s+gælder\s+kun`,
	`^til\s+måltider`,
	`^julemærker`,
	`^scan\s+qr`,
})

// nettoAppPatterns flags app-only offers (netto_scanner.py APP_PATTERNS).
var nettoAppPatterns = compilePatterns([]string{
	`gælder\s+kun\s+med\s+netto\+`,
	`netto\+\s*appen`,
	`kun\s+med\s+appen`,
})

// remaSkipPatterns adds Rema-family slogans and app prompts on top of the
// Netto table — the skip set is retailer-tuned.
var remaSkipPatterns = append(append([]*regexp.Regexp{}, nettoSkipPatterns...), compilePatterns([]string{
	`^rema\s*1000`,
	`^det\s+er\s+prisen\s+værd`,
	`^download\s+rema`,
	`^scan\s+dit\s+bon`,
})...)

// genericWordsBlacklist rejects names too vague to be real products.
var genericWordsBlacklist = map[string]bool{
	"dybfrost": true, "frost": true, "frisk": true, "dansk": true, "økologisk": true,
	"udenlandsk": true, "imported": true, "december": true, "januar": true, "februar": true,
	"marts": true, "april": true, "maj": true, "juni": true, "juli": true, "august": true,
	"september": true, "oktober": true, "november": true, "tarteletfyld": true,
	"tilbehør": true, "diverse": true, "blandet": true, "mix": true, "andet": true,
}

var monthNamePrefix = regexp.MustCompile(`^(januar|februar|marts|april|maj|juni|juli|august|september|oktober|november|december)(\s|$)`)

// instructionPatterns flags action/marketing imperatives.
var instructionPatterns = compilePatterns([]string{
	`^vej\s+selv`,
	`^scan\s+(og|&|koden)`,
	`^deltag\s+`,
	`^tilmeld\s+`,
	`^hent\s+`,
	`^se\s+(mere|avisen|opskrift|åbningstid)`,
	`^læs\s+mere`,
	`^find\s+`,
	`^vind\s+`,
	`^køb\s+\d+\s+(og|for)`,
	`^spar\s+`,
})

// cookingPatterns flags mid-recipe cooking-instruction text.
var cookingPatterns = compilePatterns([]string{
	`^steges\s+`,
	`^koges\s+`,
	`^bages\s+`,
	`^serveres\s+`,
	`^tilberedes\s+`,
	`^pakkes\s+ind`,
	`^lægges\s+`,
	`^skæres\s+`,
	`^er\s+opnået`,
	`^er\s+klar`,
	`^er\s+færdig`,
	`^\d+\s*°`,
	`^i\s+ca\.\s+\d+\s+min`,
	`^kernetemperatur`,
})

// skipStarts are lowercase prefixes that mark promotional/marketing text.
var skipStarts = []string{
	"gælder", "forbehold", "flere butikker",
	"de viste", "baseret på", "netto",
	"tilbud", "member", "medlems",
	"meget mere", "julefrokost", "fest", "super",
	"åbningstid", "du kan også", "hent scan",
	"mobilepay", "dankort", "se mere",
	"julekalender", "konkurrence",
	"julemærker", "upersonlige", "dit bidrag",
	"hvert tilvalg", "når du køber", "til måltider",
}

// marketingKeywords reject a name if it *contains* any of these anywhere.
var marketingKeywords = []string{
	"julefrokost", "meget mere", "super tilbud", "kæmpe tilbud",
	"julekalender", "konkurrence", "vind ", "deltag ",
	"normalpris", "før ", "spar ",
}

// problematicLeadingConjunctions reject a no-price offer with these prefixes.
var problematicLeadingConjunctions = []string{
	"og ", "se ", "kasse med", "& ", "med ",
	"eller ", "samt ", "inkl", "excl",
}

var (
	pureDigitsDashes      = regexp.MustCompile(`^[\d\s\-]+$`)
	digitPakSuffix        = regexp.MustCompile(`^\d+-pak$`)
	dashPriceLiteral      = regexp.MustCompile(`^\d+\s*[.,]\s*-\s*$`)
	decimalPriceLiteral   = regexp.MustCompile(`^\d+[.,]\d{2}$`)
	allCapsBanner         = regexp.MustCompile(`^[A-ZÆØÅ\s!]+$`)
	embeddedDashPrice     = regexp.MustCompile(`\d+\s*[.,]\s*-`)
	ampersandLead         = regexp.MustCompile(`^[&]\s`)
	// trailingPriceRemnant{1,2,3} strip a price-register's own text off the
	// end of a merged product line. blockLineTexts joins spans on the same
	// line with a single space, so the kroner digits and their terminating
	// suffix span (".", "-", ".-", ",-") never end up glued together — the
	// `\s*` between them accounts for that join.
	trailingPriceRemnant1 = regexp.MustCompile(`\s+\d+\s*[.\-]\s*$`)
	trailingPriceRemnant2 = regexp.MustCompile(`\s+\d+\s*[.,]-\s*$`)
	trailingPriceRemnant3 = regexp.MustCompile(`\s+\d+\s*\.\s*$`)
	prisenGaelderPrefix   = regexp.MustCompile(`(?i)^prisen\s+gælder[^a-zæøå]*`)
	gaelderFraPrefix      = regexp.MustCompile(`(?i)^gælder\s+fra[^a-zæøå]*\d{4}\s*`)

	quantityLineSkip1 = regexp.MustCompile(`^pr\.\s`)
	quantityLineSkip2 = regexp.MustCompile(`^\d+[-–]\d+\s*(g|kg|ml|l)`)
	quantityLineSkip3 = regexp.MustCompile(`^\d+\s*(g|kg|ml|l|cl|stk)\.?$`)

	quantityUnitRegex   = regexp.MustCompile(`(?i)(\d+[-–]?\d*)\s*(g|kg|ml|l|cl|stk)`)
	pricePerUnitRegex   = regexp.MustCompile(`(?i)pr\.\s*(kg|l|stk)|[\d.,]+\s*pr\.\s*(kg|l|stk|½\s*kg)`)
	commentMaxRegex     = regexp.MustCompile(`(?i)max\.\s*\d+\s*\w+`)
	commentPartivare    = regexp.MustCompile(`(?i)partivare`)

	ellerSplitRegex = regexp.MustCompile(`(?i)^(.+?)\s+eller\s+(.+)$`)
	digitSlashDigit = regexp.MustCompile(`\d/\d`)
)

func compilePatterns(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}
