package report

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var htmlConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderHTML converts the markdown summary into a standalone HTML page.
func RenderHTML(markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := htmlConverter.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("converting report to HTML: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	page.WriteString("<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Device Task Evaluation Report</title>\n")
	page.WriteString("<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), nil
}
