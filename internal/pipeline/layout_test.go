package pipeline

import (
	"testing"

	"dealsscannerpro/internal/scanerr"
)

func TestExtractLayout_InvalidDocument(t *testing.T) {
	_, err := ExtractLayout([]byte("this is not a pdf"))
	if err == nil {
		t.Fatal("expected an error for non-PDF bytes")
	}
	if !scanerr.IsKind(err, scanerr.InvalidDocument) {
		t.Errorf("expected InvalidDocument, got %v", err)
	}
}

func TestExtractLayout_EmptyBytes(t *testing.T) {
	_, err := ExtractLayout(nil)
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
}
