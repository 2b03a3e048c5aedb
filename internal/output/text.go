package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/yairfalse/vahti/internal/differ"
	"github.com/yairfalse/vahti/pkg/types"
)

// TextFormatter renders reports for terminals. The content matches the HTML
// rendering line for line so a dry run shows exactly what the mail would say.
type TextFormatter struct {
	added   *color.Color
	deleted *color.Color
	reason  *color.Color
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(noColor bool) *TextFormatter {
	f := &TextFormatter{
		added:   color.New(color.FgGreen),
		deleted: color.New(color.FgRed),
		reason:  color.New(color.FgYellow),
	}
	if noColor {
		f.added.DisableColor()
		f.deleted.DisableColor()
		f.reason.DisableColor()
	}
	return f
}

// Format renders the report as plain text.
func (f *TextFormatter) Format(report *types.Report) string {
	var b strings.Builder

	if report.Metadata.Delta > 0 {
		fmt.Fprintf(&b, "In the %s leading up to %s...\n\n",
			humanDelta(report.Metadata.Delta),
			report.Metadata.Now.Format(time.RFC3339))
	}

	for _, section := range report.Sections() {
		if len(section.Findings) == 0 {
			fmt.Fprintf(&b, "Nothing to report for %s.\n", section.Kind)
			continue
		}

		fmt.Fprintf(&b, "Noteworthy %s:\n", section.Kind)
		for _, name := range sortedNames(section.Findings) {
			fmt.Fprintf(&b, "  %s: %s\n", name, f.paint(section.Findings[name]))
		}
	}

	return b.String()
}

// paint colors each descriptor in a comma-joined list independently, so
// "New, Pending" shows as a green tag next to a yellow reason.
func (f *TextFormatter) paint(descriptor string) string {
	parts := strings.Split(descriptor, ", ")
	for i, part := range parts {
		switch part {
		case differ.TagNew:
			parts[i] = f.added.Sprint(part)
		case differ.TagDeleted:
			parts[i] = f.deleted.Sprint(part)
		default:
			parts[i] = f.reason.Sprint(part)
		}
	}
	return strings.Join(parts, ", ")
}
