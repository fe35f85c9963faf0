package models

// BBox is a bounding box in page coordinates normalized to [0,1].
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Union returns the smallest BBox enclosing both boxes.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// Span is the atomic output of layout extraction: one typeset run of text
// carrying its bounding box and font size. Immutable after extraction.
type Span struct {
	Text     string
	BBox     BBox
	FontSize float64
	Page     int // 1-based
	Line     int // order of the source line on the page
}

// Page is one decoded page: its dimensions in points and its ordered spans.
type Page struct {
	Number int
	Width  float64
	Height float64
	Spans  []Span
}

// PriceOrigin names which Price Locator rule produced a PriceAnchor.
type PriceOrigin string

const (
	PriceOriginLargeFontNumeric PriceOrigin = "large-font-numeric"
	PriceOriginDecimalLiteral   PriceOrigin = "decimal-literal"
	PriceOriginTextualDashForm  PriceOrigin = "textual-dash-form"
)

// PriceAnchor is a reconstructed monetary value located in the layout.
type PriceAnchor struct {
	Value  float64
	Page   int
	Line   int
	X      float64
	Origin PriceOrigin
}

// OfferBlock is a contiguous group of Spans clustered together, with
// exactly zero or one attached PriceAnchor.
type OfferBlock struct {
	Page     int
	BBox     BBox
	Lines    []Span
	ColumnX  float64
	Price    *PriceAnchor
	Detect   BlockDetection
}

// BlockDetection carries the detector's own confidence in a block, derived
// from how cleanly it clustered (column stability, line count, price
// presence).
type BlockDetection struct {
	Confidence float64
	Reason     string
}
