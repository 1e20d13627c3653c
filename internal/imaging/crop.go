package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
)

// Region is a rectangle in image coordinates; (X1,Y1) inclusive, (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop extracts region from img, optionally scaling the result.
func Crop(img image.Image, r Region, scale float64) (image.Image, error) {
	bounds := img.Bounds()

	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, apperr.InvalidArgument(fmt.Sprintf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y), nil)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, apperr.InvalidArgument("invalid crop region: x1 must be < x2, y1 must be < y2", nil)
	}

	cropped := imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2))

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, apperr.InvalidArgument(fmt.Sprintf("scale %g collapses the region to zero area", scale), nil)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, nil
}

// Upscale enlarges img with Lanczos resampling so that it is at least
// minHeight pixels tall, keeping the aspect ratio. Tesseract reads small
// screenshot glyphs poorly. Images already tall enough, or minHeight <= 0,
// are returned unchanged.
func Upscale(img image.Image, minHeight int) image.Image {
	if minHeight <= 0 || img.Bounds().Dy() >= minHeight {
		return img
	}
	return imaging.Resize(img, 0, minHeight, imaging.Lanczos)
}

// EncodedImage is a PNG rendition of an image for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 returns img as a base64 PNG with its dimensions.
func EncodeBase64(img image.Image) (*EncodedImage, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}
