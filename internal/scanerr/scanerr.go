// Package scanerr defines the typed error kinds a Scan can surface, mirroring
// the Kind-discriminant pattern of services.DuplicateError.
package scanerr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error kinds a scan can produce.
type Kind string

const (
	// InvalidDocument means layout extraction failed; the scan aborts.
	InvalidDocument Kind = "invalid_document"
	// EmptyResult means the scan completed but produced zero offers. It is
	// non-fatal; callers may construct this to signal the condition, but
	// Scan itself never returns it as an error.
	EmptyResult Kind = "empty_result"
	// NormalizerUnavailable means a network or auth failure occurred talking
	// to the LM provider. Never surfaced to the caller: the normalizer falls
	// back to the rule-based provider silently. The Normalizer uses it only
	// to tag its fallback log lines.
	NormalizerUnavailable Kind = "normalizer_unavailable"
	// PartialOffer means a block produced a price anchor but failed
	// validation. Dropped silently; counted, never surfaced as an error.
	PartialOffer Kind = "partial_offer"
)

// ScanError wraps a Kind and an underlying cause.
type ScanError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ScanError) Unwrap() error { return e.Err }

// New builds a ScanError of the given kind.
func New(kind Kind, reason string, err error) *ScanError {
	return &ScanError{Kind: kind, Reason: reason, Err: err}
}

// As reports whether err is (or wraps) a *ScanError, like services.AsDuplicateError.
func As(err error) (*ScanError, bool) {
	var se *ScanError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a ScanError of the given kind.
func IsKind(err error, kind Kind) bool {
	se, ok := As(err)
	return ok && se.Kind == kind
}
