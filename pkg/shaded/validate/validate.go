// Package validate checks shaderpack manifests against the packaging rules.
//
// Every rule runs on every call; a failing rule never hides the findings of
// the rules after it. The only filesystem access is resolving and statting
// the declared paths.
package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pictomancers/shaded/pkg/shaded/shaderpack"
)

// ErrInvalidManifest is returned by callers that treat an Invalid report as
// a failure.
var ErrInvalidManifest = errors.New("manifest was invalid due to one or more validation errors")

// Group names in report order.
const (
	GroupInformation = "Information"
)

const (
	msgWhitespace    = "contains leading or trailing whitespace"
	msgNoLicense     = "no license file has been set"
	msgOutputEscapes = "output paths cannot contain directory escapes like '../'"
	msgNotAFile      = "source is not a file"
)

// Validate runs the rule set against m. Relative paths in the manifest are
// resolved against manifestDir.
func Validate(m *shaderpack.Manifest, manifestDir string) *Report {
	r := &Report{}

	info := newGroup(GroupInformation)
	checkTrimmed(info, "name", m.Name)
	checkTrimmed(info, "description", m.Description)
	for _, author := range m.Authors {
		checkTrimmed(info, "authors", author)
	}
	checkLicense(info, manifestDir, m.LicenseFile)
	r.Groups = append(r.Groups, info)

	for _, c := range shaderpack.Categories {
		decls := m.Declarations(c)
		if decls == nil {
			continue
		}
		g := newGroup(c.Title())
		for _, d := range decls {
			checkDeclaration(g, manifestDir, d)
		}
		r.Groups = append(r.Groups, g)
	}

	r.settle()
	return r
}

// ValidateFile loads the manifest at path and validates it against its own
// directory. Read and parse failures are returned as errors.
func ValidateFile(path string) (*Report, error) {
	m, err := shaderpack.Load(path)
	if err != nil {
		return nil, err
	}
	r := Validate(m, filepath.Dir(path))
	r.Path = path
	return r, nil
}

func checkTrimmed(g *Group, field, value string) {
	if value != strings.TrimSpace(value) {
		g.record(Finding{Field: field, Severity: Error, Message: msgWhitespace})
	}
}

func checkLicense(g *Group, manifestDir string, license *string) {
	if license == nil {
		g.record(Finding{Field: "license", Severity: Warning, Message: msgNoLicense})
		return
	}
	if _, err := shaderpack.Canonicalize(filepath.Join(manifestDir, *license)); err != nil {
		g.record(Finding{Field: "license", Severity: Error, Message: err.Error()})
	}
}

func checkDeclaration(g *Group, manifestDir string, d shaderpack.FileDeclaration) {
	sourcePath := filepath.Join(manifestDir, d.Source)

	if d.Source != strings.TrimSpace(d.Source) {
		g.record(Finding{Field: sourcePath, Severity: Error, Message: msgWhitespace})
	} else if resolved, err := shaderpack.Canonicalize(sourcePath); err != nil {
		g.record(Finding{Field: sourcePath, Severity: Error, Message: fmt.Sprintf("source not found: %v", err)})
	} else if info, err := os.Stat(resolved); err != nil || !info.Mode().IsRegular() {
		g.record(Finding{Field: sourcePath, Severity: Error, Message: msgNotAFile})
	}

	if strings.Contains(filepath.ToSlash(d.Output), "../") {
		g.record(Finding{Field: d.Output, Severity: Error, Message: msgOutputEscapes})
	}
}
