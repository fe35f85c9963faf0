package pipeline

import (
	"bytes"
	"fmt"
	"log"
	"sort"

	"github.com/ledongthuc/pdf"

	"dealsscannerpro/internal/models"
	"dealsscannerpro/internal/scanerr"
)

const defaultPageWidthPT = 595.0  // A4 fallback, points
const defaultPageHeightPT = 842.0

// sameLineToleranceY is the vertical gap, in points, within which two glyph
// runs are considered to sit on the same typeset line.
const sameLineToleranceY = 3.0

// ExtractLayout decodes pdf bytes into an ordered list of Pages carrying
// positioned Spans with normalized bounding boxes and font sizes. Mirrors
// AnalyzePDF's recover()-wrapped, never-panics contract: the only error this
// returns is scanerr.InvalidDocument.
func ExtractLayout(pdfBytes []byte) (pages []models.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LAYOUT] recovered from panic: %v", r)
			pages = nil
			err = scanerr.New(scanerr.InvalidDocument, "panic during layout extraction", fmt.Errorf("%v", r))
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if rerr != nil {
		return nil, scanerr.New(scanerr.InvalidDocument, "open pdf reader", rerr)
	}

	n := reader.NumPage()
	if n < 1 {
		return nil, scanerr.New(scanerr.InvalidDocument, "pdf has no pages", nil)
	}

	pages = make([]models.Page, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			// Non-text-bearing page: empty span list, not an error.
			pages = append(pages, models.Page{Number: i, Width: defaultPageWidthPT, Height: defaultPageHeightPT})
			continue
		}

		w, h := pageDimensions(page)
		spans := extractPageSpans(page, i, w, h)
		pages = append(pages, models.Page{Number: i, Width: w, Height: h, Spans: spans})
	}

	return pages, nil
}

func pageDimensions(page pdf.Page) (width, height float64) {
	width, height = defaultPageWidthPT, defaultPageHeightPT
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() != 4 {
		return width, height
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	w := x1 - x0
	h := y1 - y0
	if w > 0 {
		width = w
	}
	if h > 0 {
		height = h
	}
	return width, height
}

// extractPageSpans pulls the page's glyph runs, orders them top-to-bottom
// and then left-to-right, and assigns each one a line index by clustering
// consecutive runs whose Y coordinates fall within sameLineToleranceY of
// the first run of the current line.
func extractPageSpans(page pdf.Page, pageNum int, pageWidth, pageHeight float64) []models.Span {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	texts := make([]pdf.Text, len(content.Text))
	copy(texts, content.Text)

	// Runs are re-sorted by Y (descending, beyond sameLineToleranceY) and,
	// within that tolerance, by X, so the decoder's own stream order is not
	// kept. Runs from side-by-side columns at the same height end up on one
	// line.
	sort.SliceStable(texts, func(a, b int) bool {
		if dy := texts[a].Y - texts[b].Y; dy > sameLineToleranceY || dy < -sameLineToleranceY {
			return texts[a].Y > texts[b].Y // PDF Y grows upward; reading order is downward
		}
		return texts[a].X < texts[b].X
	})

	spans := make([]models.Span, 0, len(texts))
	line := 0
	var lastY float64
	haveLast := false

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		if !haveLast || absf(t.Y-lastY) > sameLineToleranceY {
			if haveLast {
				line++
			}
			lastY = t.Y
			haveLast = true
		}

		x0 := t.X
		y0 := t.Y
		x1 := t.X + t.W
		y1 := t.Y + t.FontSize

		spans = append(spans, models.Span{
			Text:     t.S,
			FontSize: t.FontSize,
			Page:     pageNum,
			Line:     line,
			BBox: models.BBox{
				X0: clamp01(x0 / pageWidth),
				Y0: clamp01(y0 / pageHeight),
				X1: clamp01(x1 / pageWidth),
				Y1: clamp01(y1 / pageHeight),
			},
		})
	}

	return spans
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
