package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/pictomancers/shaded/pkg/shaded/validate"
)

type yamlReport struct {
	Path   string      `yaml:"path,omitempty"`
	Status string      `yaml:"status"`
	Groups []yamlGroup `yaml:"groups"`
}

type yamlGroup struct {
	Name     string        `yaml:"name"`
	Findings []yamlFinding `yaml:"findings"`
}

type yamlFinding struct {
	Field    string `yaml:"field"`
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
}

// YAMLFormatter writes the report as a YAML document.
type YAMLFormatter struct{}

// Format writes the report to w.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *validate.Report) error {
	out := yamlReport{Path: r.Path, Status: r.Status.String()}
	for _, g := range r.Groups {
		yg := yamlGroup{Name: g.Name, Findings: []yamlFinding{}}
		for _, finding := range g.Findings {
			yg.Findings = append(yg.Findings, yamlFinding{
				Field:    finding.Field,
				Severity: finding.Severity.String(),
				Message:  finding.Message,
			})
		}
		out.Groups = append(out.Groups, yg)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
