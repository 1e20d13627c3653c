// Package capture grabs the screen as an image for recognition.
//
// The implementation is chosen once at startup by Resolve. Platforms
// without screen capture get Unsupported, which fails every call with
// ErrUnsupportedPlatform instead of branching at each call site.
package capture

import (
	"context"
	"errors"
	"image"
)

// ErrUnsupportedPlatform is returned when the running OS cannot capture
// the screen.
var ErrUnsupportedPlatform = errors.New("screen capture is not supported on this platform")

// ScreenCapture produces an image of the screen.
type ScreenCapture interface {
	Capture(ctx context.Context) (image.Image, error)
	// Supported reports whether Capture can succeed on this platform.
	Supported() bool
}

// Unsupported is the ScreenCapture for platforms without a capture backend.
type Unsupported struct{}

// Capture always fails with ErrUnsupportedPlatform.
func (Unsupported) Capture(context.Context) (image.Image, error) {
	return nil, ErrUnsupportedPlatform
}

// Supported returns false.
func (Unsupported) Supported() bool { return false }
