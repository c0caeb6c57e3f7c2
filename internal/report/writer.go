// Package report writes a built report as an HTML page, Markdown, plain text
// or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/htmlutil"
)

type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

var Formats = []Format{FormatHTML, FormatMarkdown, FormatText, FormatJSON}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// ContentType is the HTTP content type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write renders p in format f.
func Write(w io.Writer, f Format, p *Page) error {
	switch f {
	case FormatHTML:
		return WriteHTML(w, p)
	case FormatMarkdown:
		return WriteMarkdown(w, p.Report, p.Insight)
	case FormatText:
		return WriteText(w, p)
	case FormatJSON:
		return WriteJSON(w, p)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// WriteText writes the page as plain text. Charts are dropped.
func WriteText(w io.Writer, p *Page) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, p); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlutil.ToText(buf.String()))
	return err
}

// WriteJSON writes the report's figures and, when present, the insight.
func WriteJSON(w io.Writer, p *Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*analysis.Report
		Insight string `json:"insight,omitempty"`
	}{p.Report, p.Insight})
}
