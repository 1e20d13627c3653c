package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
)

// createInMemoryImage creates a uniform test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTextLikeImage draws dark strokes on a light, unevenly lit and
// noisy background, roughly what a phone photo of a worksheet looks like.
func createTextLikeImage(width, height int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Lighting gradient from left to right.
			base := 170 + 60*x/width
			noise := rng.Intn(21) - 10
			v := uint8(clamp(base+noise, 0, 255))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	// Horizontal and vertical strokes
	for y := height / 3; y < height/3+4; y++ {
		for x := 10; x < width-10; x++ {
			img.Set(x, y, color.RGBA{30, 30, 40, 255})
		}
	}
	for y := 10; y < height-10; y++ {
		for x := width / 2; x < width/2+4; x++ {
			img.Set(x, y, color.RGBA{20, 25, 30, 255})
		}
	}
	return img
}

func smallNormalizeConfig() config.Normalize {
	cfg := config.Default().Normalize
	// Keep the tests fast; the algorithm is identical.
	cfg.SearchSize = 7
	cfg.PatchSize = 3
	return cfg
}

func assertBinary(t *testing.T, img *image.Gray) (black, white int) {
	t.Helper()
	for _, v := range img.Pix {
		switch v {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("pixel value %d is neither 0 nor 255", v)
		}
	}
	return black, white
}

func TestNormalize_BinaryAndSameDimensions(t *testing.T) {
	sizes := []struct{ w, h int }{
		{64, 48},
		{33, 17},
		{5, 3},
	}

	n := NewNormalizer(smallNormalizeConfig())
	for _, sz := range sizes {
		img := createTextLikeImage(sz.w, sz.h)
		out, err := n.Normalize(context.Background(), img)
		if err != nil {
			t.Fatalf("Normalize(%dx%d) failed: %v", sz.w, sz.h, err)
		}
		if out.Bounds().Dx() != sz.w || out.Bounds().Dy() != sz.h {
			t.Errorf("dimensions: got %dx%d, want %dx%d", out.Bounds().Dx(), out.Bounds().Dy(), sz.w, sz.h)
		}
		assertBinary(t, out)
	}
}

func TestNormalize_KeepsStrokesDark(t *testing.T) {
	img := createTextLikeImage(80, 60)
	n := NewNormalizer(smallNormalizeConfig())

	out, err := n.Normalize(context.Background(), img)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	black, white := assertBinary(t, out)
	if black == 0 || white == 0 {
		t.Fatalf("expected both black and white pixels, got black=%d white=%d", black, white)
	}
	if white < black {
		t.Errorf("background should stay white: black=%d white=%d", black, white)
	}
	// Centre of the horizontal stroke
	if v := out.GrayAt(20, 60/3+1).Y; v != 0 {
		t.Errorf("stroke pixel should be black, got %d", v)
	}
	// Far corner is paper
	if v := out.GrayAt(75, 55).Y; v != 255 {
		t.Errorf("background pixel should be white, got %d", v)
	}
}

func TestNormalize_OffsetBounds(t *testing.T) {
	src := createTextLikeImage(40, 30)
	sub := src.SubImage(image.Rect(10, 5, 40, 30))

	out, err := NewNormalizer(smallNormalizeConfig()).Normalize(context.Background(), sub)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 30, 25) {
		t.Errorf("bounds: got %v, want (0,0)-(30,25)", out.Bounds())
	}
}

func TestNormalize_ZeroArea(t *testing.T) {
	n := NewNormalizer(smallNormalizeConfig())

	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"zero width", image.NewRGBA(image.Rect(0, 0, 0, 10))},
		{"zero height", image.NewRGBA(image.Rect(0, 0, 10, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tt.img)
			if !apperr.Is(err, apperr.KindInvalidImage) {
				t.Errorf("expected KindInvalidImage, got %v", err)
			}
		})
	}
}

func TestNormalize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNormalizer(smallNormalizeConfig()).Normalize(ctx, createTextLikeImage(40, 40))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalize_FixPolarity(t *testing.T) {
	// Light text on a dark background.
	img := createInMemoryImage(40, 40, color.RGBA{20, 20, 20, 255})
	for y := 18; y < 22; y++ {
		for x := 5; x < 35; x++ {
			img.Set(x, y, color.White)
		}
	}

	cfg := smallNormalizeConfig()
	cfg.FixPolarity = true
	out, err := NewNormalizer(cfg).Normalize(context.Background(), img)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	black, white := assertBinary(t, out)
	if white < black {
		t.Errorf("polarity not fixed: black=%d white=%d", black, white)
	}
	if out.GrayAt(20, 20).Y != 0 {
		t.Errorf("text pixel should be black after inversion, got %d", out.GrayAt(20, 20).Y)
	}
}

func TestGrayscale_Modes(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{200, 100, 50, 255})

	for _, mode := range []string{config.GrayLuma, config.GrayLightness} {
		t.Run(mode, func(t *testing.T) {
			g := Grayscale(img, mode)
			if g.Bounds() != image.Rect(0, 0, 4, 4) {
				t.Errorf("bounds: got %v", g.Bounds())
			}
			v := g.GrayAt(1, 1).Y
			if v == 0 || v == 255 {
				t.Errorf("unexpected intensity %d for mid-tone colour", v)
			}
		})
	}
}

func TestGrayscale_FlattensTransparencyOntoWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3)) // fully transparent
	g := Grayscale(img, config.GrayLuma)
	if v := g.GrayAt(1, 1).Y; v < 250 {
		t.Errorf("transparent pixel should flatten to white, got %d", v)
	}
}
