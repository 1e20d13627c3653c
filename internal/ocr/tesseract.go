package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
	"github.com/ironsheep/math-ocr-mcp/internal/imaging"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
)

// Tesseract recognizes text with the Tesseract engine through gosseract.
//
// A fresh client is created per call, so a Tesseract value holds no state
// between requests and is safe for concurrent use.
type Tesseract struct {
	// TessdataPrefix overrides where language data is looked up; empty
	// leaves Tesseract's own default (TESSDATA_PREFIX or the system path).
	TessdataPrefix string

	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract-backed recognizer.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{
		TessdataPrefix: tessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}
}

// Recognize returns the text Tesseract reads from img.
//
// Languages are joined into one multilingual request ("vie+eng").
//
// An engine that cannot start (library missing, language data not
// installed, bad tessdata path) yields apperr.KindRecognitionUnavailable.
// Any other engine failure is logged as a warning and yields empty text, so
// a bad page never aborts the caller with engine internals.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, langs []string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(langs) == 0 {
		return "", apperr.InvalidArgument("at least one OCR language is required", nil)
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return "", apperr.InvalidImage("failed to encode image for OCR", err)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Warn("OCR engine panicked; returning empty text")
			text, err = "", nil
		}
	}()

	client := t.clientFactory()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", apperr.RecognitionUnavailable("failed to set tessdata path", err)
		}
	}
	if err := client.SetLanguage(langs...); err != nil {
		return "", apperr.RecognitionUnavailable("failed to set language", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return t.degrade("failed to set image", err, langs)
	}

	out, err := client.Text()
	if err != nil {
		if isInitFailure(err) {
			return "", apperr.RecognitionUnavailable(
				fmt.Sprintf("tesseract could not start with languages %s", strings.Join(langs, "+")), err)
		}
		return t.degrade("OCR failed", err, langs)
	}
	return out, nil
}

func (t *Tesseract) degrade(msg string, err error, langs []string) (string, error) {
	logger.WithFields(map[string]interface{}{
		"error":     err.Error(),
		"languages": strings.Join(langs, "+"),
	}).Warn(msg + "; returning empty text")
	return "", nil
}

// isInitFailure reports whether a gosseract error came from engine start-up
// rather than from recognizing a particular image.
func isInitFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "initialize") ||
		strings.Contains(msg, "tessdata") ||
		strings.Contains(msg, "traineddata")
}

// EngineInfo describes the OCR subsystem.
type EngineInfo struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Backend        string `json:"backend"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Info reports whether Tesseract can be reached and which version it is.
func (t *Tesseract) Info() (info EngineInfo) {
	info = EngineInfo{Backend: "gosseract", TessdataPrefix: t.TessdataPrefix}
	defer func() {
		if r := recover(); r != nil {
			info.Available = false
			info.Error = fmt.Sprint(r)
		}
	}()

	client := t.clientFactory()
	defer client.Close()

	info.Version = client.Version()
	info.Available = info.Version != ""
	if !info.Available {
		info.Error = "tesseract version unavailable"
	}
	return info
}
