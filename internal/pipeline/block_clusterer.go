package pipeline

import "dealsscannerpro/internal/models"

// columnChangeThreshold is the minimum |Δx|, in PDF points, that marks a
// column jump and forces a new block: 49.9 does not split, 50.0 does.
// Span.BBox.X0 is normalized to [0,1], so ClusterBlocks is given the
// page's width to convert back to points before comparing.
const columnChangeThreshold = 50.0

// priceAnchorLookahead is how many lines past a block's end a PriceAnchor
// may still be attached to it, tolerating a price that typeset just below
// its product line.
const priceAnchorLookahead = 2

// lineState groups a page's non-skip spans by line index, retaining the
// first span's x as the line's representative column position.
type lineState struct {
	index int
	x     float64
	spans []models.Span
}

// ClusterBlocks groups a page's non-skip spans into OfferBlocks by
// column-x and price-anchor-terminated boundaries. skipLine
// reports whether a given line index is a line the Text Hygiene stage
// would discard (its spans never start or extend a block). pageWidth
// converts each line's normalized x back to points for the column-change
// comparison; pageWidth <= 0 is treated as 1 (x already in point space, the
// convention this package's own tests use).
func ClusterBlocks(page int, spans []models.Span, anchors []models.PriceAnchor, skipLine func(lineIdx int) bool, pageWidth float64) []models.OfferBlock {
	if pageWidth <= 0 {
		pageWidth = 1
	}
	lines := groupByLine(spans, skipLine)
	if len(lines) == 0 {
		return nil
	}

	priceLines := make(map[int]bool, len(anchors))
	for _, a := range anchors {
		priceLines[a.Line] = true
	}

	var blocks []models.OfferBlock
	startIdx := 0
	currentX := lines[0].x

	flush := func(endIdx int) {
		if endIdx < startIdx {
			return
		}
		blocks = append(blocks, buildBlock(page, lines[startIdx:endIdx+1]))
	}

	for i := 1; i < len(lines); i++ {
		prev := lines[i-1]
		cur := lines[i]

		columnChanged := absf((cur.x-currentX)*pageWidth) >= columnChangeThreshold
		prevWasPrice := priceLines[prev.index]

		if columnChanged || prevWasPrice {
			flush(i - 1)
			startIdx = i
			currentX = cur.x
		}
	}
	flush(len(lines) - 1)

	attachPrices(blocks, anchors)
	for i := range blocks {
		blocks[i].Detect = detectionConfidence(blocks[i])
	}
	return blocks
}

// detectionConfidence scores how cleanly a block clustered: a tight,
// price-anchored, reasonably sized block scores high; a sprawling or
// price-less one scores lower. Passed through as the "detection" factor
// of the Deriver's confidence weighting.
func detectionConfidence(b models.OfferBlock) models.BlockDetection {
	score := 0.6
	reason := "base"
	if b.Price != nil {
		score += 0.25
		reason = "price-anchored"
	}
	lineCount := len(uniqueLines(b.Lines))
	switch {
	case lineCount >= 1 && lineCount <= 4:
		score += 0.1
	case lineCount > 6:
		score -= 0.15
		reason = "sprawling-block"
	}
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return models.BlockDetection{Confidence: score, Reason: reason}
}

func uniqueLines(spans []models.Span) []int {
	seen := map[int]bool{}
	var out []int
	for _, sp := range spans {
		if !seen[sp.Line] {
			seen[sp.Line] = true
			out = append(out, sp.Line)
		}
	}
	return out
}

func groupByLine(spans []models.Span, skipLine func(int) bool) []lineState {
	byLine := map[int][]models.Span{}
	var order []int
	for _, sp := range spans {
		if skipLine != nil && skipLine(sp.Line) {
			continue
		}
		if _, ok := byLine[sp.Line]; !ok {
			order = append(order, sp.Line)
		}
		byLine[sp.Line] = append(byLine[sp.Line], sp)
	}

	lines := make([]lineState, 0, len(order))
	for _, idx := range order {
		members := byLine[idx]
		lines = append(lines, lineState{index: idx, x: members[0].BBox.X0, spans: members})
	}
	return lines
}

func buildBlock(page int, lines []lineState) models.OfferBlock {
	var block models.OfferBlock
	block.Page = page
	block.ColumnX = lines[0].x

	first := true
	for _, l := range lines {
		for _, sp := range l.spans {
			block.Lines = append(block.Lines, sp)
			if first {
				block.BBox = sp.BBox
				first = false
			} else {
				block.BBox = block.BBox.Union(sp.BBox)
			}
		}
	}
	return block
}

// attachPrices attaches to each block the first PriceAnchor whose line
// index lies in [block.start, block.end + lookahead], consuming that
// anchor so a later block's lookahead window can never claim it too —
// each PriceAnchor belongs to at most one OfferBlock.
func attachPrices(blocks []models.OfferBlock, anchors []models.PriceAnchor) {
	consumed := make([]bool, len(anchors))
	for i := range blocks {
		b := &blocks[i]
		if len(b.Lines) == 0 {
			continue
		}
		start := b.Lines[0].Line
		end := b.Lines[len(b.Lines)-1].Line

		for j, a := range anchors {
			if consumed[j] {
				continue
			}
			if a.Line >= start && a.Line <= end+priceAnchorLookahead {
				anchor := a
				b.Price = &anchor
				consumed[j] = true
				break
			}
		}
	}
}
