package models

// AmountUnit is the closed set of quantity units a normalized product may
// carry.
type AmountUnit string

const (
	UnitGram      AmountUnit = "g"
	UnitKilogram  AmountUnit = "kg"
	UnitMilliliter AmountUnit = "ml"
	UnitCentiliter AmountUnit = "cl"
	UnitDeciliter  AmountUnit = "dl"
	UnitLiter      AmountUnit = "l"
	UnitPiece      AmountUnit = "stk"
	UnitPack       AmountUnit = "pk"
)

// ContainerType is the closed set of container kinds a normalizer may emit.
type ContainerType string

const (
	ContainerCan    ContainerType = "CAN"
	ContainerBottle ContainerType = "BOTTLE"
	ContainerBag    ContainerType = "BAG"
	ContainerTray   ContainerType = "TRAY"
	ContainerBox    ContainerType = "BOX"
	ContainerJar    ContainerType = "JAR"
	ContainerTube   ContainerType = "TUBE"
	ContainerNone   ContainerType = ""
)

// UnitPriceUnit is the closed set of unit-price denominators.
type UnitPriceUnit string

const (
	UnitPriceKrPerLiter UnitPriceUnit = "kr/L"
	UnitPriceKrPerKilo  UnitPriceUnit = "kr/kg"
	UnitPriceKrPerPiece UnitPriceUnit = "kr/stk"
)

// OfferStatus is the publication status derived from the overall confidence.
type OfferStatus string

const (
	StatusPublished     OfferStatus = "published"
	StatusNeedsReview    OfferStatus = "needs_review"
	StatusLowConfidence  OfferStatus = "low_confidence"
)

// NormalizedProduct is the structured field set produced by the Normalizer.
// Product is required; every other field is optional.
type NormalizedProduct struct {
	Brand      string
	Product    string
	Variant    string
	Variants   []string
	Category   string
	AmountValue *float64
	AmountUnit  AmountUnit
	PackCount   *int
	Container   ContainerType
	Deposit     *float64
	Comment     string
	Confidence  float64
}

// ConfidenceDetails is the per-factor breakdown behind an Offer's overall
// confidence score.
type ConfidenceDetails struct {
	Price        float64 `json:"price"`
	Detection    float64 `json:"detection"`
	GPT          float64 `json:"gpt"`
	Amount       float64 `json:"amount"`
	Completeness float64 `json:"completeness"`
}

// Trace records where in the source document an Offer came from.
type Trace struct {
	Page       int      `json:"page"`
	BBox       BBox     `json:"bbox"`
	TextLines  []string `json:"text_lines"`
	SourceFile string   `json:"source_file,omitempty"`
}

// Candidates records the readings considered before the one selected, kept
// only for learning-mode review; nil in the common case.
type Candidates struct {
	PriceCandidates  []float64 `json:"price_candidates,omitempty"`
	AmountCandidates []string  `json:"amount_candidates,omitempty"`
	Selected         string    `json:"selected,omitempty"`
}

// Offer is the final record emitted by the pipeline. Created once in the
// Deriver; never mutated after emission.
type Offer struct {
	ID string `json:"id"`

	ProductTextRaw string        `json:"product_text_raw"`
	Brand          string        `json:"brand_norm,omitempty"`
	Product        string        `json:"product_norm"`
	Variant        string        `json:"variant_norm,omitempty"`
	Variants       []string      `json:"variants,omitempty"`
	Category       string        `json:"category,omitempty"`
	AmountValue    *float64      `json:"net_amount_value,omitempty"`
	AmountUnit     AmountUnit    `json:"net_amount_unit,omitempty"`
	PackCount      *int          `json:"pack_count,omitempty"`
	Container      ContainerType `json:"container_type,omitempty"`

	Price            float64        `json:"price_value"`
	Deposit          *float64       `json:"deposit_value,omitempty"`
	PriceExclDeposit float64        `json:"price_excl_deposit"`
	UnitPriceValue   *float64       `json:"unit_price_value,omitempty"`
	UnitPriceUnit    UnitPriceUnit  `json:"unit_price_unit,omitempty"`

	SKUKey string `json:"sku_key,omitempty"`
	Comment string `json:"comment,omitempty"`

	Confidence        float64           `json:"confidence"`
	ConfidenceDetails ConfidenceDetails `json:"confidence_details"`
	ConfidenceReasons []string          `json:"confidence_reasons"`
	Status            OfferStatus       `json:"status"`

	IsDuplicate    bool `json:"is_duplicate,omitempty"`
	FirstSeenPage  int  `json:"first_seen_page,omitempty"`

	CropURL *string `json:"crop_url,omitempty"`

	Trace      Trace       `json:"trace"`
	Candidates *Candidates `json:"candidates,omitempty"`
}

// Meta carries the first-page detections: retailer identity and the
// flyer's validity window.
type Meta struct {
	Retailer             string  `json:"retailer"`
	RetailerConfidence    float64 `json:"retailer_confidence"`
	ValidFrom             string  `json:"valid_from,omitempty"`
	ValidTo               string  `json:"valid_to,omitempty"`
	ValidityConfidence    float64 `json:"validity_confidence"`
	SourceFile            string  `json:"source_file,omitempty"`
	DetectionReason       string  `json:"detection_reason,omitempty"`
}

// ScanStats summarizes the run for the caller, independent of the Offers
// slice itself.
type ScanStats struct {
	TotalPages      int    `json:"total_pages"`
	TotalBlocks     int    `json:"total_blocks"`
	OffersDetected  int    `json:"offers_detected"`
	OffersExtracted int    `json:"offers_extracted"`
	ScannerVersion  string `json:"scanner_version"`
}

// ScanResult is the top-level output of a single Scan call.
type ScanResult struct {
	Version string    `json:"version"`
	Meta    Meta      `json:"meta"`
	Stats   ScanStats `json:"scan_stats"`
	Offers  []Offer   `json:"offers"`
}
