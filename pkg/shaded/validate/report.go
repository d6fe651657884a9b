package validate

import "fmt"

// Severity classifies a finding.
type Severity int

const (
	// Warning findings never make a manifest invalid.
	Warning Severity = iota
	// Error findings make a manifest invalid.
	Error
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the overall outcome of a validation run.
type Status int

const (
	Valid Status = iota
	ValidWithWarnings
	Invalid
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case ValidWithWarnings:
		return "valid_with_warnings"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is a single rule violation.
type Finding struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Group holds the findings reported under one heading. Findings are keyed
// by field: recording a field twice replaces the earlier finding but keeps
// its position.
type Group struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings"`

	index map[string]int
}

func newGroup(name string) *Group {
	return &Group{
		Name:     name,
		Findings: []Finding{},
		index:    make(map[string]int),
	}
}

func (g *Group) record(f Finding) {
	if i, ok := g.index[f.Field]; ok {
		g.Findings[i] = f
		return
	}
	g.index[f.Field] = len(g.Findings)
	g.Findings = append(g.Findings, f)
}

// OK reports whether the group has no findings.
func (g *Group) OK() bool {
	return len(g.Findings) == 0
}

// Report is the result of validating one manifest.
type Report struct {
	Path   string   `json:"path,omitempty"`
	Status Status   `json:"status"`
	Groups []*Group `json:"groups"`
}

// Findings returns every finding across all groups in report order.
func (r *Report) Findings() []Finding {
	var all []Finding
	for _, g := range r.Groups {
		all = append(all, g.Findings...)
	}
	return all
}

// Counts returns the number of warnings and errors in the report.
func (r *Report) Counts() (warnings, errors int) {
	for _, f := range r.Findings() {
		switch f.Severity {
		case Warning:
			warnings++
		case Error:
			errors++
		}
	}
	return warnings, errors
}

func (r *Report) settle() {
	warnings, errors := r.Counts()
	switch {
	case errors > 0:
		r.Status = Invalid
	case warnings > 0:
		r.Status = ValidWithWarnings
	default:
		r.Status = Valid
	}
}
