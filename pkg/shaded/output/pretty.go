package output

import (
	"bytes"
	"fmt"

	"github.com/pictomancers/shaded/pkg/shaded/validate"
)

// PrettyFormatter renders a report with lipgloss colors, one heading per
// group.
type PrettyFormatter struct{}

// Format writes the styled report to w.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *validate.Report) error {
	for _, g := range r.Groups {
		w.WriteString(TitleStyle.Render("Validating " + g.Name))
		w.WriteString("\n")

		if g.OK() {
			w.WriteString("  " + SuccessStyle.Render("✓ validated successfully") + "\n\n")
			continue
		}
		for _, finding := range g.Findings {
			w.WriteString("  " + f.finding(finding) + "\n")
		}
		w.WriteString("\n")
	}

	line := verdict(r.Status)
	switch r.Status {
	case validate.Invalid:
		line = ErrorStyle.Bold(true).Render(line)
	case validate.ValidWithWarnings:
		line = WarningStyle.Render(line)
	default:
		line = SuccessStyle.Render(line)
	}
	w.WriteString(line + "\n")
	return nil
}

func (f *PrettyFormatter) finding(finding validate.Finding) string {
	if finding.Severity == validate.Error {
		return ErrorStyle.Render(fmt.Sprintf("✗ error with %s:", finding.Field)) + " " + finding.Message
	}
	return WarningStyle.Render(fmt.Sprintf("! warning with %s:", finding.Field)) + " " + finding.Message
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
