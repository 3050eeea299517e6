// Package finding holds the minimal finding model shared between the scan
// report and the platform integrations.
package finding

import "github.com/lif2/checkov/pkg/severity"

// CodeLine is a single line of the offending code block, with its original
// line number in the scanned file.
type CodeLine struct {
	Number int
	Line   string
}

// Finding is a single failed check. Ownership stays with the report model;
// the guidance enricher only ever writes Details.
type Finding struct {
	CheckID   string
	CheckName string
	Severity  *severity.Severity
	FilePath  string
	CodeBlock []CodeLine

	// Details holds generated remediation guidance, one rendered line per
	// entry.
	Details []string
}

// SeverityLevel returns the numeric severity level, treating findings
// without a severity as level 0.
func (f *Finding) SeverityLevel() int {
	if f.Severity == nil {
		return 0
	}
	return f.Severity.Level
}
