package gallery

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

const emptyText = "<p>No hay información disponible.</p>"

var (
	boldRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.*?)\*`)
	paragraphRe = regexp.MustCompile(`\n{2,}`)
)

// FormatTextToHTML renders the Markdown-like specimen records: **bold**,
// *italic*, blank-line separated paragraphs and hard line breaks. The text is
// HTML-escaped before any markup is added.
func FormatTextToHTML(text string) template.HTML {
	if text == "" {
		return template.HTML(emptyText)
	}
	text = strings.ReplaceAll(text, "--- FICHA DE ESPÉCIMEN ---", "")
	text = strings.ReplaceAll(text, "## FICHA DE ESPÉCIMEN", "")
	text = html.EscapeString(strings.TrimSpace(text))
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "<em>$1</em>")

	var b strings.Builder
	for _, p := range paragraphRe.Split(text, -1) {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(strings.TrimSpace(p), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}
