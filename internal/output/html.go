package output

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yairfalse/vahti/pkg/types"
)

// RenderHTML renders the report as a flat mail body: a lead line when two
// snapshots were compared, then one block per kind. Mail clients wrap this in
// their own document, so there is no <html> envelope.
func RenderHTML(report *types.Report) string {
	var b strings.Builder

	if report.Metadata.Delta > 0 {
		fmt.Fprintf(&b, "<p>In the %s leading up to %s...</p>",
			humanDelta(report.Metadata.Delta),
			report.Metadata.Now.Format(time.RFC3339))
	}

	for _, section := range report.Sections() {
		if len(section.Findings) == 0 {
			fmt.Fprintf(&b, "<p>Nothing to report for %s.</p>", section.Kind)
			continue
		}

		fmt.Fprintf(&b, "<p>Noteworthy %s:</p><ul>", section.Kind)
		for _, name := range sortedNames(section.Findings) {
			fmt.Fprintf(&b, "<li>%s: %s</li>",
				html.EscapeString(name),
				html.EscapeString(section.Findings[name]))
		}
		b.WriteString("</ul>")
	}

	return b.String()
}
