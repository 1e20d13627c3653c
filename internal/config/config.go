// Package config holds the tunable settings of the math OCR pipeline.
//
// Settings start from Default, may be overlaid by a YAML file via LoadFile,
// and are finally overridden by CLI flags and MATH_OCR_* environment
// variables in cmd/math-ocr.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Grayscale conversion modes.
const (
	GrayLuma      = "luma"
	GrayLightness = "lightness"
)

// Export formats understood by the packager.
const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Normalize tunes the image normalizer stages.
type Normalize struct {
	GrayMode    string  `yaml:"gray_mode"`
	TileGrid    int     `yaml:"tile_grid"`
	ClipLimit   float64 `yaml:"clip_limit"`
	DenoiseH    float64 `yaml:"denoise_h"`
	PatchSize   int     `yaml:"patch_size"`
	SearchSize  int     `yaml:"search_size"`
	FixPolarity bool    `yaml:"fix_polarity"`
	// MinHeight upscales images shorter than this many pixels; 0 disables.
	MinHeight int `yaml:"min_height"`
	// DenoiseBudget caps pixels * search² for non-local means. Larger
	// images get a narrower search window; 0 disables the cap.
	DenoiseBudget int64 `yaml:"denoise_budget"`
}

// RuleConfig is an extra extraction pattern appended after the built-in rules.
type RuleConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Headings are the section titles written into exported documents.
type Headings struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
	LaTeX string `yaml:"latex"`
}

// DefaultHeadings returns the Vietnamese titles of the original download.
func DefaultHeadings() Headings {
	return Headings{
		Title: "Kết quả chuyển đổi toán học",
		Text:  "Văn bản gốc:",
		LaTeX: "Mã LaTeX:",
	}
}

// Config is the full pipeline configuration.
type Config struct {
	Languages              []string      `yaml:"languages"`
	TessdataPrefix         string        `yaml:"tessdata_prefix"`
	ConvertTimeout         time.Duration `yaml:"convert_timeout"`
	ConvertWorkers         int           `yaml:"convert_workers"`
	ImplicitMultiplication bool          `yaml:"implicit_multiplication"`
	ExportFormat           string        `yaml:"export_format"`
	Headings               Headings      `yaml:"headings"`
	Normalize              Normalize     `yaml:"normalize"`
	ExtraRules             []RuleConfig  `yaml:"extra_rules"`
}

// Default returns the configuration used when nothing is overridden.
// Normalizer values mirror the usual OpenCV choices: an 8x8 CLAHE grid with
// clip limit 2.0 and non-local means with h=3, 7x7 patches, 21x21 search.
func Default() *Config {
	return &Config{
		Languages:              []string{"vie", "eng"},
		ConvertTimeout:         2 * time.Second,
		ConvertWorkers:         4,
		ImplicitMultiplication: true,
		ExportFormat:           FormatDOCX,
		Headings:               DefaultHeadings(),
		Normalize: Normalize{
			GrayMode:      GrayLuma,
			TileGrid:      8,
			ClipLimit:     2.0,
			DenoiseH:      3,
			PatchSize:     7,
			SearchSize:    21,
			DenoiseBudget: 1 << 30,
		},
	}
}

// LoadFile overlays the YAML file at path onto the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ParseLanguages splits a "vie+eng" or "vie,eng" hint into language codes.
func ParseLanguages(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one OCR language is required")
	}
	if c.ConvertTimeout <= 0 {
		return fmt.Errorf("convert_timeout must be > 0 (got %s)", c.ConvertTimeout)
	}
	if c.ConvertWorkers <= 0 {
		return fmt.Errorf("convert_workers must be > 0 (got %d)", c.ConvertWorkers)
	}
	switch c.ExportFormat {
	case FormatDOCX, FormatPDF, FormatHTML:
	default:
		return fmt.Errorf("unknown export_format %q", c.ExportFormat)
	}

	n := c.Normalize
	if n.GrayMode != GrayLuma && n.GrayMode != GrayLightness {
		return fmt.Errorf("unknown gray_mode %q", n.GrayMode)
	}
	if n.TileGrid < 1 {
		return fmt.Errorf("tile_grid must be >= 1 (got %d)", n.TileGrid)
	}
	if n.ClipLimit <= 0 {
		return fmt.Errorf("clip_limit must be > 0 (got %g)", n.ClipLimit)
	}
	if n.DenoiseH <= 0 {
		return fmt.Errorf("denoise_h must be > 0 (got %g)", n.DenoiseH)
	}
	if n.PatchSize < 1 || n.PatchSize%2 == 0 {
		return fmt.Errorf("patch_size must be a positive odd number (got %d)", n.PatchSize)
	}
	if n.SearchSize < n.PatchSize || n.SearchSize%2 == 0 {
		return fmt.Errorf("search_size must be odd and >= patch_size (got %d)", n.SearchSize)
	}
	if n.MinHeight < 0 {
		return fmt.Errorf("min_height must be >= 0 (got %d)", n.MinHeight)
	}
	if n.DenoiseBudget < 0 {
		return fmt.Errorf("denoise_budget must be >= 0 (got %d)", n.DenoiseBudget)
	}

	for _, r := range c.ExtraRules {
		if r.Name == "" {
			return fmt.Errorf("extra rule with pattern %q has no name", r.Pattern)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("extra rule %s: %w", r.Name, err)
		}
		if re.MatchString("") {
			return fmt.Errorf("extra rule %s: pattern %q matches the empty string", r.Name, r.Pattern)
		}
	}
	return nil
}
