package settings

import (
	"fmt"
	"sort"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings/schema"
)

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityError blocks persistence.
	SeverityError Severity = "error"
	// SeverityWarning is advisory only.
	SeverityWarning Severity = "warning"
)

// Finding is a path-addressed validation diagnostic.
type Finding struct {
	// Path is the dot-separated path to the setting, e.g. "appearance.fontSize".
	Path string
	// Message describes the problem.
	Message string
	// Severity is error or warning.
	Severity Severity
}

// HasErrors reports whether any finding in the list has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorFindings returns only the error-severity findings.
func ErrorFindings(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Rule is a whole-document validator. Rules see the full document so they
// can express cross-category constraints. A rule must not panic; a panic is
// a programming defect and is reported through the pipeline's defect
// handler, never as a finding.
type Rule func(doc Document) []Finding

// Pipeline runs the field schema and all registered rules over a candidate
// document and returns every finding, ordered by path.
type Pipeline struct {
	validator *schema.Validator
	rules     []Rule

	// onDefect is invoked when a rule panics.
	onDefect func(ruleIndex int, recovered any)
}

// NewPipeline creates a pipeline with the built-in field schema and the
// standard cross-category rules.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		validator: schema.NewValidator(FieldSchema()),
	}
	p.Register(ruleSigningIdentity)
	p.Register(ruleSyncRequiresBackend)
	p.Register(ruleAggressiveIntervals)
	return p
}

// Register adds a whole-document rule.
func (p *Pipeline) Register(rule Rule) {
	p.rules = append(p.rules, rule)
}

// OnDefect sets the handler invoked when a rule panics.
func (p *Pipeline) OnDefect(fn func(ruleIndex int, recovered any)) {
	p.onDefect = fn
}

// Run validates the document and returns all findings. Findings are always
// recomputed from scratch; nothing is cached between runs.
func (p *Pipeline) Run(doc Document) []Finding {
	var findings []Finding

	for _, v := range p.validator.Validate(doc.ToMap()) {
		findings = append(findings, Finding{
			Path:     v.Path,
			Message:  v.Message,
			Severity: SeverityError,
		})
	}

	for i, rule := range p.rules {
		findings = append(findings, p.runRule(i, rule, doc)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Path < findings[j].Path
	})
	return findings
}

// runRule executes one rule with panic recovery.
func (p *Pipeline) runRule(index int, rule Rule, doc Document) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			if p.onDefect != nil {
				p.onDefect(index, r)
			}
		}
	}()
	return rule(doc)
}

// ruleSigningIdentity requires a signing identity when commit signing is on.
func ruleSigningIdentity(doc Document) []Finding {
	if !doc.VersionControl.SignCommits {
		return nil
	}
	var out []Finding
	if doc.General.AuthorEmail == "" {
		out = append(out, Finding{
			Path:     "general.authorEmail",
			Message:  "commit signing requires an author email",
			Severity: SeverityError,
		})
	}
	if doc.VersionControl.SigningKeyPath == "" {
		out = append(out, Finding{
			Path:     "versionControl.signingKeyPath",
			Message:  "commit signing requires a signing key path",
			Severity: SeverityError,
		})
	}
	return out
}

// ruleSyncRequiresBackend requires a primary backend URL when sync is on.
func ruleSyncRequiresBackend(doc Document) []Finding {
	if !doc.Sync.Enabled {
		return nil
	}
	if doc.Backends.PrimaryURL == "" {
		return []Finding{{
			Path:     "backends.primaryURL",
			Message:  "synchronization requires a primary backend URL",
			Severity: SeverityError,
		}}
	}
	return nil
}

// ruleAggressiveIntervals warns about timings likely to cause churn.
func ruleAggressiveIntervals(doc Document) []Finding {
	var out []Finding
	if doc.Editor.AutoSaveDelayMs >= 100 && doc.Editor.AutoSaveDelayMs < 500 {
		out = append(out, Finding{
			Path:     "editor.autoSaveDelayMs",
			Message:  fmt.Sprintf("auto-save delay of %dms may cause excessive writes", doc.Editor.AutoSaveDelayMs),
			Severity: SeverityWarning,
		})
	}
	if doc.Sync.Enabled && doc.Sync.IntervalSec >= 30 && doc.Sync.IntervalSec < 60 {
		out = append(out, Finding{
			Path:     "sync.intervalSec",
			Message:  fmt.Sprintf("sync interval of %ds may cause excessive traffic", doc.Sync.IntervalSec),
			Severity: SeverityWarning,
		})
	}
	return out
}
