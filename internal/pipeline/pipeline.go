// Package pipeline wires the normalizer, recognizer, extractor and
// converter into one request-scoped image-to-LaTeX run.
package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/extract"
	"github.com/ironsheep/math-ocr-mcp/internal/imaging"
	"github.com/ironsheep/math-ocr-mcp/internal/latex"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
)

// TextRecognizer reads text from a normalized image. langs is a non-empty
// list of engine language codes requested together.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image, langs []string) (string, error)
}

// Pipeline holds the stages of one conversion. It keeps no state between
// calls, so one Pipeline may serve concurrent requests.
type Pipeline struct {
	Normalizer *imaging.Normalizer
	Recognizer TextRecognizer
	Extractor  *extract.Extractor
	Converter  *latex.Converter
	Languages  []string
	// MinHeight upscales shorter images before normalization; 0 disables.
	MinHeight int
}

// Result is everything one run produced. Results[i] is the LaTeX for
// Candidates[i].
type Result struct {
	Text       string              `json:"text"`
	Candidates []extract.Candidate `json:"candidates"`
	Results    []latex.Result      `json:"results"`
}

// JoinedLaTeX returns the LaTeX strings separated by newlines, in order.
func (r *Result) JoinedLaTeX() string {
	return latex.Joined(r.Results)
}

// New assembles a pipeline from cfg around the given recognizer.
func New(cfg *config.Config, rec TextRecognizer) (*Pipeline, error) {
	ex, err := extract.NewFromConfig(cfg.ExtraRules)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Normalizer: imaging.NewNormalizer(cfg.Normalize),
		Recognizer: rec,
		Extractor:  ex,
		Converter:  latex.FromConfig(cfg),
		Languages:  cfg.Languages,
		MinHeight:  cfg.Normalize.MinHeight,
	}, nil
}

// WithLanguages returns a copy of p that requests langs instead of the
// configured languages. An empty langs returns p unchanged.
func (p *Pipeline) WithLanguages(langs []string) *Pipeline {
	if len(langs) == 0 {
		return p
	}
	cp := *p
	cp.Languages = langs
	return &cp
}

// Normalize upscales img if needed and returns the binary image handed to
// the recognizer.
func (p *Pipeline) Normalize(ctx context.Context, img image.Image) (*image.Gray, error) {
	if err := imaging.CheckArea(img); err != nil {
		return nil, err
	}
	return p.Normalizer.Normalize(ctx, imaging.Upscale(img, p.MinHeight))
}

// ProcessImage runs the whole pipeline on img.
//
// Only normalization and recognition can fail; there is no partial result.
// Extraction and conversion always complete, so an image without math
// yields an empty but well-formed Result.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()

	normalized, err := p.Normalize(ctx, img)
	if err != nil {
		return nil, err
	}

	text, err := p.Recognizer.Recognize(ctx, normalized, p.Languages)
	if err != nil {
		return nil, err
	}

	res := p.ProcessText(ctx, text)

	logger.WithFields(map[string]interface{}{
		"width":       img.Bounds().Dx(),
		"height":      img.Bounds().Dy(),
		"text_length": len(text),
		"candidates":  len(res.Candidates),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("processed image")

	return res, nil
}

// ProcessText extracts expressions from already recognized text and
// converts each one.
func (p *Pipeline) ProcessText(ctx context.Context, text string) *Result {
	candidates := p.Extractor.Extract(text)
	return &Result{
		Text:       text,
		Candidates: candidates,
		Results:    p.Converter.ConvertAll(ctx, extract.Texts(candidates)),
	}
}
