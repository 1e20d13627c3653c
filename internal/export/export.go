// Package export packages recognized text and LaTeX into a downloadable
// document.
//
// Three formats are supported: a Word document (the default), a PDF and
// an HTML page whose math is rendered as MathML.
package export

import (
	"fmt"
	"os"

	"github.com/ironsheep/math-ocr-mcp/internal/apperr"
	"github.com/ironsheep/math-ocr-mcp/internal/config"
)

// BaseName is the file name, without extension, of every artifact.
const BaseName = "math_conversion"

// MIME types of the produced artifacts.
const (
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF  = "application/pdf"
	MIMEHTML = "text/html; charset=utf-8"
)

// Document is the content of an export.
type Document struct {
	// Text is the recognized text, verbatim.
	Text string
	// LaTeX holds the LaTeX results joined by newlines.
	LaTeX string
	// Headings are the section titles; blank ones use config.DefaultHeadings.
	Headings config.Headings
}

func (d Document) headings() config.Headings {
	h, def := d.Headings, config.DefaultHeadings()
	if h.Title == "" {
		h.Title = def.Title
	}
	if h.Text == "" {
		h.Text = def.Text
	}
	if h.LaTeX == "" {
		h.LaTeX = def.LaTeX
	}
	return h
}

// Artifact is a packaged document ready to download or write.
type Artifact struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Format   string `json:"format"`
}

// Package renders text and the newline-joined LaTeX in the given format
// under the default headings. Empty input still yields a complete document.
func Package(format, text, latex string) (*Artifact, error) {
	return PackageDocument(format, Document{Text: text, LaTeX: latex})
}

// PackageDocument renders doc in the given format.
func PackageDocument(format string, doc Document) (*Artifact, error) {
	var (
		data []byte
		mime string
		err  error
	)
	switch format {
	case config.FormatDOCX, "":
		format = config.FormatDOCX
		data, err = DOCX(doc)
		mime = MIMEDOCX
	case config.FormatPDF:
		data, err = PDF(doc)
		mime = MIMEPDF
	case config.FormatHTML:
		data, err = HTML(doc)
		mime = MIMEHTML
	default:
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown export format %q (want docx, pdf or html)", format), nil)
	}
	if err != nil {
		return nil, apperr.Export("failed to build "+format+" document", err)
	}

	return &Artifact{
		Data:     data,
		Filename: BaseName + "." + format,
		MIMEType: mime,
		Format:   format,
	}, nil
}

// WriteFile writes the artifact to path.
func (a *Artifact) WriteFile(path string) error {
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return apperr.Export("failed to write "+path, err)
	}
	return nil
}
