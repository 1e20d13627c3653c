package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid image", InvalidImage("empty", nil), KindInvalidImage},
		{"unavailable", RecognitionUnavailable("no tesseract", cause), KindRecognitionUnavailable},
		{"wrapped", fmt.Errorf("pipeline: %w", Export("zip", cause)), KindExport},
		{"plain error", cause, KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("normalize: %w", InvalidImage("zero area", nil))
	if !Is(err, KindInvalidImage) {
		t.Error("expected wrapped error to be KindInvalidImage")
	}
	if Is(err, KindRecognitionUnavailable) {
		t.Error("error should not match KindRecognitionUnavailable")
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("library missing")
	err := RecognitionUnavailable("tesseract init failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
	msg := err.Error()
	if !strings.Contains(msg, "recognition_unavailable") || !strings.Contains(msg, "library missing") {
		t.Errorf("unexpected message: %s", msg)
	}

	bare := InvalidArgument("bad format", nil)
	if bare.Error() != "invalid_argument: bad format" {
		t.Errorf("unexpected message: %s", bare.Error())
	}
}
