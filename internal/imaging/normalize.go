package imaging

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
)

// Normalizer turns an arbitrary input image into a strictly black/white
// image tuned for OCR.
//
// The stages always run in this order:
//
//  1. Grayscale: alpha is flattened onto white, then channels collapse to
//     one intensity (bild luma weights, or CIE L* via go-colorful).
//  2. CLAHE: contrast-limited adaptive histogram equalization over a grid
//     of tiles evens out lighting.
//  3. Denoise: non-local means removes camera and screenshot speckle. It
//     runs after CLAHE so noise amplified by equalization is removed too.
//  4. Binarize: Otsu's threshold applied as a fixed binary cutoff.
//
// An optional fifth stage inverts light-on-dark results.
//
// The output has the same width and height as the input, with its origin at
// (0,0), and every pixel is either 0 or 255.
type Normalizer struct {
	cfg config.Normalize
}

// NewNormalizer creates a normalizer with the given stage settings.
func NewNormalizer(cfg config.Normalize) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize runs the full preprocessing pipeline on img.
//
// Zero-area input fails with apperr.KindInvalidImage. A failure inside any
// filter is reported with the same kind rather than swallowed.
func (n *Normalizer) Normalize(ctx context.Context, img image.Image) (out *image.Gray, err error) {
	if err := CheckArea(img); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperr.InvalidImage("image filter failed", fmt.Errorf("%v", r))
		}
	}()

	gray := Grayscale(img, n.cfg.GrayMode)
	enhanced := CLAHE(gray, n.cfg.TileGrid, n.cfg.ClipLimit)

	b := enhanced.Bounds()
	search := searchWithin(b.Dx()*b.Dy(), n.cfg.SearchSize, n.cfg.DenoiseBudget)
	if search != n.cfg.SearchSize {
		logger.WithFields(map[string]interface{}{
			"width":  b.Dx(),
			"height": b.Dy(),
			"search": search,
		}).Debug("narrowed denoise search window")
	}
	denoised, err := DenoiseNLM(ctx, enhanced, n.cfg.DenoiseH, n.cfg.PatchSize, search)
	if err != nil {
		return nil, err
	}

	binary := Binarize(denoised)
	if n.cfg.FixPolarity {
		binary = FixPolarity(binary)
	}
	return binary, nil
}

// Grayscale flattens transparency onto white and collapses img to a single
// channel with origin (0,0).
//
// mode "lightness" uses perceptual CIE L*; anything else uses bild's
// weighted luma.
func Grayscale(img image.Image, mode string) *image.Gray {
	b := img.Bounds()
	background := imaging.New(b.Dx(), b.Dy(), color.White)
	flat := imaging.Overlay(background, imaging.Clone(img), image.Pt(0, 0), 1.0)

	if mode != config.GrayLightness {
		return toGray(effect.Grayscale(flat))
	}

	w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, _ := colorful.MakeColor(flat.NRGBAAt(x, y))
			l, _, _ := c.Lab()
			out.Pix[y*out.Stride+x] = uint8(clamp(int(math.Round(l*255)), 0, 255))
		}
	}
	return out
}

// toGray copies img into a *image.Gray anchored at (0,0).
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, color.GrayModel.Convert(img.At(x+b.Min.X, y+b.Min.Y)))
		}
	}
	return out
}
