package export

import (
	"bytes"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DOCX builds a Word document: a title, then the recognized text and the
// LaTeX lines each under a level-1 heading. Every input line becomes its own
// paragraph.
func DOCX(doc Document) ([]byte, error) {
	h := doc.headings()

	d, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	if _, err := d.AddHeading(h.Title, 0); err != nil {
		return nil, err
	}
	if _, err := d.AddHeading(h.Text, 1); err != nil {
		return nil, err
	}
	addLines(d, doc.Text)
	if _, err := d.AddHeading(h.LaTeX, 1); err != nil {
		return nil, err
	}
	addLines(d, doc.LaTeX)

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addLines(d *docx.RootDoc, text string) {
	for _, line := range strings.Split(text, "\n") {
		d.AddParagraph(strings.TrimSuffix(line, "\r"))
	}
}
