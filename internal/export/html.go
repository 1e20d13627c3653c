package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

// HTML renders the content as a standalone page. Each LaTeX line is
// typeset as MathML and also listed as source.
func HTML(doc Document) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown(doc)), &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(doc.headings().Title) + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// markdown builds the page source. Text and LaTeX source sit in fenced
// blocks so Markdown syntax inside them is not interpreted.
func markdown(doc Document) string {
	h := doc.headings()
	var b strings.Builder
	b.WriteString("# " + h.Title + "\n\n")

	b.WriteString("## " + h.Text + "\n\n")
	writeFenced(&b, doc.Text)

	b.WriteString("## " + h.LaTeX + "\n\n")
	lines := nonEmptyLines(doc.LaTeX)
	if len(lines) == 0 {
		b.WriteString("_No expressions found._\n")
		return b.String()
	}
	for _, line := range lines {
		b.WriteString(line + "\n\n")
	}
	writeFenced(&b, strings.Join(lines, "\n"))
	return b.String()
}

func writeFenced(b *strings.Builder, s string) {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	b.WriteString(fence + "text\n" + s + "\n" + fence + "\n\n")
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
