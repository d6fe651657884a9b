package output

import (
	"bytes"
	"text/tabwriter"

	"github.com/pictomancers/shaded/pkg/shaded/validate"
)

// PlainFormatter writes one tab-separated line per finding followed by the
// overall status. No styling is applied.
type PlainFormatter struct{}

// Format writes the report to w.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *validate.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("GROUP\tSEVERITY\tFIELD\tMESSAGE\n")); err != nil {
		return err
	}
	for _, g := range r.Groups {
		for _, finding := range g.Findings {
			line := g.Name + "\t" + finding.Severity.String() + "\t" + finding.Field + "\t" + finding.Message + "\n"
			if _, err := tw.Write([]byte(line)); err != nil {
				return err
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	w.WriteString("status: " + r.Status.String() + "\n")
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
