package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/tessro/broadcast/internal/script"
)

var pageTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
code { font-size: 0.85em; color: #555; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// newMarkdown configures goldmark with GFM tables and heading IDs.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

type pageData struct {
	Title   string
	Content template.HTML
}

// HTML renders the Markdown transcript to a standalone HTML page.
func HTML(w io.Writer, t *script.Transcript) error {
	var md bytes.Buffer
	if err := Markdown(&md, t); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := newMarkdown().Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}

	title := t.Name
	if title == "" {
		title = "session"
	}
	return pageTemplate.Execute(w, pageData{
		Title:   "Transcript: " + title,
		Content: template.HTML(body.String()),
	})
}
