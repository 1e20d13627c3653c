package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/ironsheep/math-ocr-mcp/internal/capture"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
	"github.com/ironsheep/math-ocr-mcp/internal/export"
	"github.com/ironsheep/math-ocr-mcp/internal/imaging"
	"github.com/ironsheep/math-ocr-mcp/internal/logger"
	"github.com/ironsheep/math-ocr-mcp/internal/ocr"
	"github.com/ironsheep/math-ocr-mcp/internal/pipeline"
	"github.com/ironsheep/math-ocr-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options are the command-line settings. Every flag can also be set
// through a MATH_OCR_* environment variable.
type options struct {
	configPath     string
	languages      string
	tessdataPrefix string
	format         string
	logLevel       string
	imagePath      string
	screen         bool
	outPath        string
	showVersion    bool
}

func parseOptions(args []string) (*options, *ff.FlagSet, error) {
	fs := ff.NewFlagSet("math-ocr")
	o := &options{}
	var (
		configPath     = fs.StringLong("config", "", "YAML file with pipeline settings")
		languages      = fs.StringLong("languages", "", "OCR languages joined with '+' (default vie+eng)")
		tessdataPrefix = fs.StringLong("tessdata-prefix", "", "Directory holding Tesseract language data")
		format         = fs.StringLong("format", "", "Export format: docx, pdf or html")
		logLevel       = fs.StringLong("log-level", "", "Log level: debug, info, warn or error")
		imagePath      = fs.StringLong("image", "", "Convert this image once and exit instead of serving MCP")
		screen         = fs.BoolLong("screen", "Capture the screen once and exit instead of serving MCP")
		outPath        = fs.StringLong("out", "", "Write the exported document here (one-shot mode)")
		showVersion    = fs.BoolLong("version", "Print version information")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("MATH_OCR")); err != nil {
		return nil, fs, err
	}
	o.configPath = *configPath
	o.languages = *languages
	o.tessdataPrefix = *tessdataPrefix
	o.format = *format
	o.logLevel = *logLevel
	o.imagePath = *imagePath
	o.screen = *screen
	o.outPath = *outPath
	o.showVersion = *showVersion
	return o, fs, nil
}

// buildConfig layers the YAML file, if any, and then flags over the defaults.
func buildConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}
	if langs := config.ParseLanguages(o.languages); len(langs) > 0 {
		cfg.Languages = langs
	}
	if o.tessdataPrefix != "" {
		cfg.TessdataPrefix = o.tessdataPrefix
	}
	if o.format != "" {
		cfg.ExportFormat = o.format
	}
	return cfg, cfg.Validate()
}

func main() {
	o, fs, err := parseOptions(os.Args[1:])
	if err != nil {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
			return
		}
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if o.showVersion {
		fmt.Printf("math-ocr %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}
	if o.logLevel != "" {
		logger.SetLevel(o.logLevel)
	}

	cfg, err := buildConfig(o)
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	tess := ocr.NewTesseract(cfg.TessdataPrefix)
	p, err := pipeline.New(cfg, tess)
	if err != nil {
		logger.WithError(err).Error("failed to build pipeline")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.imagePath != "" || o.screen {
		if err := convertOnce(ctx, o, cfg, p, capture.Resolve(), os.Stdout); err != nil {
			logger.WithError(err).Error("conversion failed")
			stop()
			os.Exit(1)
		}
		return
	}

	server.Version = Version
	logger.WithFields(map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
		"languages":  cfg.Languages,
	}).Debug("starting MCP server")

	srv := server.New(cfg, p, capture.Resolve())
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("server error")
		stop()
		os.Exit(1)
	}
}

// convertOnce runs the pipeline on one image or screenshot, prints the
// recognized text and LaTeX to w and optionally writes the document.
func convertOnce(ctx context.Context, o *options, cfg *config.Config, p *pipeline.Pipeline, screen capture.ScreenCapture, w io.Writer) error {
	var (
		img image.Image
		err error
	)
	if o.imagePath != "" {
		img, err = imaging.Load(o.imagePath)
	} else {
		img, err = screen.Capture(ctx)
	}
	if err != nil {
		return err
	}

	res, err := p.ProcessImage(ctx, img)
	if err != nil {
		return err
	}
	latex := res.JoinedLaTeX()
	fmt.Fprintf(w, "%s\n%s\n", cfg.Headings.Text, res.Text)
	fmt.Fprintf(w, "%s\n%s\n", cfg.Headings.LaTeX, latex)

	if o.outPath == "" {
		return nil
	}
	artifact, err := export.PackageDocument(cfg.ExportFormat, export.Document{
		Text:     res.Text,
		LaTeX:    latex,
		Headings: cfg.Headings,
	})
	if err != nil {
		return err
	}
	if err := artifact.WriteFile(o.outPath); err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"path":   o.outPath,
		"format": artifact.Format,
		"bytes":  len(artifact.Data),
	}).Info("wrote document")
	return nil
}
