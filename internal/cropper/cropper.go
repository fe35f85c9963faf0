// Package cropper implements the optional bbox-cropper collaborator: it
// rasterizes the page an Offer's Trace points at, crops to the Offer's
// bounding box (with a small padding margin), and optionally uploads the
// PNG to a GCS bucket for a review UI. Any failure degrades silently to "no
// crop" — cropping is never allowed to fail a scan.
package cropper

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gen2brain/go-fitz"

	"dealsscannerpro/internal/models"
)

// padding is the extra margin added around a bbox before cropping, mirroring
// bbox_cropper.py's default padding=0.02.
const padding = 0.02

// renderDPI mirrors bbox_cropper.py's default dpi=150.
const renderDPI = 150

// Cropper renders and optionally uploads offer crop images. bucket may be
// nil, in which case Crop still renders the PNG but never uploads it and
// returns a nil URL (crop_url is omitted whenever cropping is disabled or
// fails).
type Cropper struct {
	bucket *storage.BucketHandle
}

// NewCropper builds a Cropper. Pass a nil bucket to render crops without
// ever uploading them (e.g. local development).
func NewCropper(bucket *storage.BucketHandle) *Cropper {
	return &Cropper{bucket: bucket}
}

// Crop implements the pipeline.CropFunc contract: render pdfBytes' `page`
// (1-based) cropped to bbox, and upload it under a deterministic object
// name derived from retailer/page/bbox/productText. Returns (nil, err) on
// any failure; the scanner treats that as "no crop available", not a scan
// failure.
func (c *Cropper) Crop(pdfBytes []byte, page int, bbox models.BBox, retailer string, productText string) (*string, error) {
	img, err := renderCroppedPage(pdfBytes, page, bbox)
	if err != nil {
		return nil, fmt.Errorf("render crop: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode crop png: %w", err)
	}

	if c.bucket == nil {
		return nil, nil
	}

	objectName := blobName(DeterministicOfferKey(retailer, page, bbox, productText))
	ctx := context.Background()
	w := c.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = "image/png"
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[CROPPER] upload write failed for %s: %v", objectName, err)
		return nil, err
	}
	if err := w.Close(); err != nil {
		log.Printf("[CROPPER] upload close failed for %s: %v", objectName, err)
		return nil, err
	}

	url := fmt.Sprintf("gs://%s/%s", c.bucket.BucketName(), objectName)
	return &url, nil
}

func renderCroppedPage(pdfBytes []byte, page int, bbox models.BBox) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (doc has %d pages)", page, doc.NumPage())
	}

	full, err := doc.ImageDPI(page-1, renderDPI)
	if err != nil {
		return nil, err
	}

	bounds := full.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	padX := (bbox.X1 - bbox.X0) * padding
	padY := (bbox.Y1 - bbox.Y0) * padding
	x0 := clamp01(bbox.X0 - padX)
	y0 := clamp01(bbox.Y0 - padY)
	x1 := clamp01(bbox.X1 + padX)
	y1 := clamp01(bbox.Y1 + padY)

	rect := image.Rect(
		bounds.Min.X+int(x0*w), bounds.Min.Y+int(y0*h),
		bounds.Min.X+int(x1*w), bounds.Min.Y+int(y1*h),
	)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, fmt.Errorf("empty crop rectangle for bbox %+v", bbox)
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := full.(subImager); ok {
		return si.SubImage(rect), nil
	}
	return full, nil
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

func blobName(key string) string {
	return key + ".png"
}

// DeterministicOfferKey reproduces generate_offer_id's
// "{retailer}-p{page}-{hash}" scheme, where hash is the first 12 hex
// characters of sha256("retailer|page|bbox|text[:50]").
func DeterministicOfferKey(retailer string, page int, bbox models.BBox, productText string) string {
	if len(productText) > 50 {
		productText = productText[:50]
	}
	content := fmt.Sprintf("%s|%d|%v|%s", retailer, page, bbox, productText)
	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])[:12]
	return fmt.Sprintf("%s-p%d-%s", strings.ToLower(retailer), page, hash)
}
