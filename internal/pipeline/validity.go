package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dealsscannerpro/internal/models"
)

// timeNow is a seam for tests; production always uses time.Now.
var timeNow = time.Now

var danishMonths = map[string]int{
	"januar": 1, "februar": 2, "marts": 3, "april": 4, "maj": 5, "juni": 6,
	"juli": 7, "august": 8, "september": 9, "oktober": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
	"sep": 9, "okt": 10, "nov": 11, "dec": 12,
}

var (
	dateRangeRegex  = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})\s*[-–]\s*(\d{1,2})[./](\d{1,2})`)
	gaelderFraRegex = regexp.MustCompile(`gælder\s+fra\s+\w+\s+(?:den\s+)?(\d{1,2})\.\s*(\w+)\s+til\s+og\s+med\s+\w+\s+(?:den\s+)?(\d{1,2})\.\s*(\w+)\s*(\d{4})?`)
	ugeRegex        = regexp.MustCompile(`uge\s*(\d{1,2})`)
)

// ValidityDetection is the result of component B's validity-window pass.
type ValidityDetection struct {
	ValidFrom  string // YYYY-MM-DD
	ValidTo    string
	Confidence float64
	Week       int // 0 if not week-based
}

// DetectValidity scans the first 5 pages of text for the first matching
// validity pattern.
func DetectValidity(pages []models.Page) ValidityDetection {
	n := len(pages)
	if n > 5 {
		n = 5
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		for _, sp := range pages[i].Spans {
			sb.WriteString(sp.Text)
			sb.WriteString(" ")
		}
	}
	text := sb.String()
	lower := strings.ToLower(text)
	year := timeNow().Year()

	if m := dateRangeRegex.FindStringSubmatch(text); m != nil {
		d1, _ := strconv.Atoi(m[1])
		m1, _ := strconv.Atoi(m[2])
		d2, _ := strconv.Atoi(m[3])
		m2, _ := strconv.Atoi(m[4])
		endYear := year
		if m1 > m2 {
			endYear = year + 1
		}
		return ValidityDetection{
			ValidFrom:  ymd(year, m1, d1),
			ValidTo:    ymd(endYear, m2, d2),
			Confidence: 0.90,
		}
	}

	if m := gaelderFraRegex.FindStringSubmatch(lower); m != nil {
		d1, _ := strconv.Atoi(m[1])
		mon1 := danishMonths[m[2]]
		d2, _ := strconv.Atoi(m[3])
		mon2 := danishMonths[m[4]]
		y := year
		if m[5] != "" {
			y, _ = strconv.Atoi(m[5])
		}
		if mon1 == 0 {
			mon1 = 12
		}
		if mon2 == 0 {
			mon2 = 12
		}
		return ValidityDetection{
			ValidFrom:  ymd(y, mon1, d1),
			ValidTo:    ymd(y, mon2, d2),
			Confidence: 0.85,
		}
	}

	if m := ugeRegex.FindStringSubmatch(lower); m != nil {
		week, _ := strconv.Atoi(m[1])
		start, end := isoWeekRange(year, week)
		return ValidityDetection{
			ValidFrom:  start.Format("2006-01-02"),
			ValidTo:    end.Format("2006-01-02"),
			Confidence: 0.85,
			Week:       week,
		}
	}

	return ValidityDetection{Confidence: 0.0}
}

func ymd(y, m, d int) string {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// isoWeekRange returns the Monday and Sunday of ISO week `week` of `year`,
// per the ISO-8601 rule "week 1 contains the first Thursday of the year"
// (see DESIGN.md for why this was chosen over a non-ISO alternative).
func isoWeekRange(year, week int) (time.Time, time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	// ISO weekday: Monday=1 ... Sunday=7.
	isoWeekday := int(jan4.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(isoWeekday - 1))
	start := week1Monday.AddDate(0, 0, (week-1)*7)
	end := start.AddDate(0, 0, 6)
	return start, end
}
