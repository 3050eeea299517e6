package severity

import "strings"

// Severity is a platform severity with a stable numeric level. Levels are
// comparable across categories; OFF is a sentinel that sorts above everything.
type Severity struct {
	Name  string
	Level int
}

var (
	None     = &Severity{Name: "NONE", Level: 0}
	Low      = &Severity{Name: "LOW", Level: 1}
	Medium   = &Severity{Name: "MEDIUM", Level: 2}
	High     = &Severity{Name: "HIGH", Level: 3}
	Critical = &Severity{Name: "CRITICAL", Level: 4}
	Off      = &Severity{Name: "OFF", Level: 999}
)

// ordered holds the canonical severities by ascending level, no aliases.
var ordered = []*Severity{None, Low, Medium, High, Critical, Off}

// byName includes the platform aliases. Aliases resolve to the canonical
// severity, so MODERATE and MEDIUM are the same object.
var byName = map[string]*Severity{
	"NONE":      None,
	"LOW":       Low,
	"MEDIUM":    Medium,
	"MODERATE":  Medium,
	"HIGH":      High,
	"IMPORTANT": High,
	"CRITICAL":  Critical,
	"OFF":       Off,
}

func (s *Severity) String() string {
	return s.Name
}

// Get returns the severity for the given name, case-insensitive and
// alias-aware. Returns nil for empty or unknown names.
func Get(name string) *Severity {
	if name == "" {
		return nil
	}
	return byName[strings.ToUpper(name)]
}

// HighestBelow returns the highest canonical severity with a level strictly
// below the given level, or nil if there is none.
func HighestBelow(level int) *Severity {
	var last *Severity
	for _, s := range ordered {
		if s.Level < level {
			last = s
		}
	}
	return last
}
