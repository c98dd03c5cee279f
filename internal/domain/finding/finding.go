// Package finding defines the optional enrichments attached to an answer.
package finding

// Kind discriminates the Finding variants.
type Kind string

const (
	KindCompatibility   Kind = "compatibility"
	KindTroubleshooting Kind = "troubleshooting"
	KindCodeExamples    Kind = "code_examples"
)

// Finding is one auxiliary enrichment. Implemented by Compatibility,
// TroubleshootFlow and CodeExamples only.
type Finding interface {
	Kind() Kind
	finding()
}

// Severity of a compatibility note.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Note is a single compatibility statement.
type Note struct {
	Severity Severity
	Message  string
}

// Compatibility lists version notes for the components detected in a query.
type Compatibility struct {
	// Versions maps a component name (cuda, tensorrt, cudnn, driver) to the detected version.
	Versions map[string]string
	Notes    []Note
}

func (Compatibility) Kind() Kind { return KindCompatibility }
func (Compatibility) finding()   {}

// Warnings returns only warning-level messages.
func (c Compatibility) Warnings() []string {
	var out []string
	for _, n := range c.Notes {
		if n.Severity == SeverityWarning {
			out = append(out, n.Message)
		}
	}
	return out
}

// Step is one action in a troubleshooting flow.
type Step struct {
	Title       string
	Description string
	Command     string
}

// TroubleshootFlow is a matched step-by-step debugging guide.
type TroubleshootFlow struct {
	Issue string
	Steps []Step
}

func (TroubleshootFlow) Kind() Kind { return KindTroubleshooting }
func (TroubleshootFlow) finding()   {}

// CodeExample is a link to a source file in a public repository.
type CodeExample struct {
	Name       string
	Path       string
	Repository string
	URL        string
}

// CodeExamples is the result of a code search.
type CodeExamples struct {
	Examples []CodeExample
}

func (CodeExamples) Kind() Kind { return KindCodeExamples }
func (CodeExamples) finding()   {}

// Set collects the findings of one request. Absent variants stay nil.
type Set struct {
	Compatibility   *Compatibility
	Troubleshooting *TroubleshootFlow
	CodeExamples    []CodeExample
}

// Add stores f in its slot. A later finding of the same kind replaces the earlier one.
func (s *Set) Add(f Finding) {
	switch v := f.(type) {
	case Compatibility:
		s.Compatibility = &v
	case *Compatibility:
		s.Compatibility = v
	case TroubleshootFlow:
		s.Troubleshooting = &v
	case *TroubleshootFlow:
		s.Troubleshooting = v
	case CodeExamples:
		s.CodeExamples = v.Examples
	case *CodeExamples:
		s.CodeExamples = v.Examples
	}
}

// Empty reports whether no finding is present.
func (s Set) Empty() bool {
	return s.Compatibility == nil && s.Troubleshooting == nil && len(s.CodeExamples) == 0
}
