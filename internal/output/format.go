package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/yairfalse/vahti/pkg/types"
)

// Format represents the available report renderings.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name from a flag or config value.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: text, html, json, yaml)", name)
	}
}

// Renderer turns reports into bytes for one of the supported formats.
type Renderer struct {
	text *TextFormatter
}

// NewRenderer creates a renderer. noColor disables ANSI colors in the text
// format; the other formats never carry color.
func NewRenderer(noColor bool) *Renderer {
	return &Renderer{
		text: NewTextFormatter(noColor),
	}
}

// Render formats a report in the given format.
func (r *Renderer) Render(report *types.Report, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(r.text.Format(report)), nil
	case FormatHTML:
		return []byte(RenderHTML(report)), nil
	case FormatJSON:
		return json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		return yaml.Marshal(report)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// sortedNames returns the finding names in ascending order so every rendering
// lists objects the same way.
func sortedNames(findings map[string]string) []string {
	names := make([]string, 0, len(findings))
	for name := range findings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// humanDelta renders a duration the way the report header reads it, e.g.
// "1 day" or "2 weeks".
func humanDelta(d time.Duration) string {
	anchor := time.Unix(0, 0).UTC()
	return strings.TrimSpace(humanize.RelTime(anchor, anchor.Add(d), "", ""))
}
