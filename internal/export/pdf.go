package export

import (
	"bytes"
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// PDF lays out the same content as DOCX on A4 pages with the core fonts.
func PDF(doc Document) ([]byte, error) {
	h := doc.headings()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(h.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, winAnsi(h.Title), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, winAnsi(h.Text), "", "L", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, winAnsi(doc.Text), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, winAnsi(h.LaTeX), "", "L", false)
	pdf.SetFont("Courier", "", 10)
	pdf.MultiCell(0, 5, winAnsi(doc.LaTeX), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// winAnsi encodes s for the PDF core fonts, which only cover Windows-1252.
// Letters outside it lose their diacritics (Vietnamese "ư" becomes "u");
// anything still unencodable becomes "?".
func winAnsi(s string) string {
	var b strings.Builder
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		switch r {
		case 'đ':
			b.WriteByte('d')
			continue
		case 'Đ':
			b.WriteByte('D')
			continue
		}
		base := []rune(norm.NFD.String(string(r)))[0]
		if c, ok := charmap.Windows1252.EncodeRune(base); ok && base != r {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
