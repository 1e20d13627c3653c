//go:build linux || windows || darwin || freebsd

package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/ironsheep/math-ocr-mcp/internal/logger"
)

// Screen captures one display through kbinani/screenshot.
type Screen struct {
	// Display is the index of the display to capture; 0 is the primary.
	Display int
}

// Resolve returns the screen capture for this platform.
func Resolve() ScreenCapture {
	return &Screen{}
}

// Capture grabs the whole display.
func (s *Screen) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if s.Display < 0 || s.Display >= n {
		return nil, fmt.Errorf("display %d not available (%d active displays)", s.Display, n)
	}

	bounds := screenshot.GetDisplayBounds(s.Display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", s.Display, err)
	}

	logger.WithFields(map[string]interface{}{
		"display": s.Display,
		"width":   bounds.Dx(),
		"height":  bounds.Dy(),
	}).Debug("captured screen")
	return img, nil
}

// Supported returns true.
func (s *Screen) Supported() bool { return true }
