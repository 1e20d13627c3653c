package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
)

// Format names reported by DetectFormat.
const (
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatGIF     = "gif"
	FormatHEIC    = "heic"
	FormatPDF     = "pdf"
	FormatUnknown = "unknown"
)

// Load reads and decodes the image file at path.
//
// Decoding failures and zero-area images are reported as apperr.KindInvalidImage.
func Load(path string) (image.Image, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.InvalidImage(fmt.Sprintf("failed to read image %s", filepath.Base(path)), err)
	}
	return data, nil
}

// Decode turns uploaded bytes into an image.
//
// PNG, JPEG and GIF are decoded with EXIF auto-orientation so phone photos
// come out upright. HEIC/HEIF uploads use the pure Go HEIC decoder, and for
// PDF uploads the first page is rasterized.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperr.InvalidImage("empty image data", nil)
	}

	var (
		img image.Image
		err error
	)
	switch DetectFormat(data) {
	case FormatHEIC:
		img, err = heic.Decode(bytes.NewReader(data))
	case FormatPDF:
		img, err = rasterizePDF(data)
	default:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, apperr.InvalidImage("failed to decode image", err)
	}
	if err := CheckArea(img); err != nil {
		return nil, err
	}
	return img, nil
}

// CheckArea fails with KindInvalidImage for nil or zero-area images.
func CheckArea(img image.Image) error {
	if img == nil {
		return apperr.InvalidImage("no image", nil)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return apperr.InvalidImage(fmt.Sprintf("image has zero area (%dx%d)", b.Dx(), b.Dy()), nil)
	}
	return nil
}

func rasterizePDF(data []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// DetectFormat sniffs the container format from magic bytes.
func DetectFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return FormatPDF
	case isHEIC(data):
		return FormatHEIC
	}
	return FormatUnknown
}

// isHEIC checks for an ISO-BMFF ftyp box with a HEIF family brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch strings.ToLower(string(data[8:12])) {
	case "heic", "heix", "heif", "mif1", "msf1", "hevc":
		return true
	}
	return false
}

// ImageInfo contains metadata about a decoded image.
type ImageInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	HasAlpha bool   `json:"has_alpha"`
	// SizeBytes is the size of the encoded input.
	SizeBytes int `json:"size_bytes"`
}

// Info decodes data and reports its dimensions and format.
func Info(data []byte) (*ImageInfo, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    DetectFormat(data),
		HasAlpha:  hasAlpha,
		SizeBytes: len(data),
	}, nil
}

// InfoFile reads the image file at path and reports its metadata.
func InfoFile(path string) (*ImageInfo, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Info(data)
}
