// Package markdown renders policy bodies for preview. Raw HTML in the input
// is escaped.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown writes the HTML representation of md to buf. If conversion
// fails the escaped source is written instead.
func RenderMarkdown(buf *bytes.Buffer, md string) {
	if err := renderer.Convert([]byte(md), buf); err != nil {
		buf.Reset()
		buf.WriteString("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
}

// HTML renders md for use inside html/template.
func HTML(md string) template.HTML {
	var buf bytes.Buffer
	RenderMarkdown(&buf, md)
	return template.HTML(buf.String())
}
