package output

import (
	"bytes"
	"encoding/json"

	"github.com/pictomancers/shaded/pkg/shaded/validate"
)

// JSONFormatter writes the report as one indented JSON document.
type JSONFormatter struct{}

// Format writes the report to w.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
