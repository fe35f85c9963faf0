package models

import "time"

// ScanRun is the audit-log row persisted per Scan call: run metadata only,
// never the offer line items themselves — persisting offers is explicitly
// out of scope for this service.
type ScanRun struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	SourceFile         string    `json:"source_file" gorm:"index"`
	Retailer           string    `json:"retailer" gorm:"index"`
	RetailerConfidence float64   `json:"retailer_confidence"`
	ValidFrom          string    `json:"valid_from"`
	ValidTo            string    `json:"valid_to"`
	TotalPages         int       `json:"total_pages"`
	TotalBlocks        int       `json:"total_blocks"`
	OffersDetected     int       `json:"offers_detected"`
	OffersExtracted    int       `json:"offers_extracted"`
	ScannerVersion     string    `json:"scanner_version"`
	DurationMS         int64     `json:"duration_ms"`
	Failed             bool      `json:"failed" gorm:"index"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (ScanRun) TableName() string {
	return "scan_runs"
}
