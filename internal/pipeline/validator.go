package pipeline

import (
	"strconv"
	"strings"

	"dealsscannerpro/internal/models"
)

// dedupKey groups offers within one scan by (lowercased product, price);
// a repeat of a key already seen is flagged as a duplicate of the
// first-seen page.
type dedupKey struct {
	product string
	price   string
}

// DeduplicateRun marks is_duplicate/first_seen_page on a single scan's
// offers, in place, without removing any of them — duplicates still
// appear in the output; downstream decides whether to collapse them.
func DeduplicateRun(offers []models.Offer) {
	firstSeen := make(map[dedupKey]int, len(offers))
	for i := range offers {
		key := dedupKey{
			product: strings.ToLower(strings.TrimSpace(offers[i].Product)),
			price:   strconv.FormatFloat(offers[i].Price, 'f', 2, 64),
		}
		if page, seen := firstSeen[key]; seen {
			offers[i].IsDuplicate = true
			offers[i].FirstSeenPage = page
			continue
		}
		firstSeen[key] = offers[i].Trace.Page
	}
}
