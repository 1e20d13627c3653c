package capture

import (
	"context"
	"errors"
	"testing"
)

func TestUnsupported(t *testing.T) {
	var sc ScreenCapture = Unsupported{}
	img, err := sc.Capture(context.Background())
	if !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("expected ErrUnsupportedPlatform, got %v", err)
	}
	if img != nil {
		t.Error("expected no image")
	}
	if sc.Supported() {
		t.Error("Unsupported should not report support")
	}
}

func TestResolve(t *testing.T) {
	if Resolve() == nil {
		t.Fatal("Resolve returned nil")
	}
}
