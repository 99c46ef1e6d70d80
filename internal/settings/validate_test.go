package settings

import (
	"testing"
)

func TestPipeline_DefaultsAreClean(t *testing.T) {
	p := NewPipeline()
	if got := p.Run(Defaults()); len(got) != 0 {
		t.Errorf("defaults produced findings: %v", got)
	}
}

func TestPipeline_FieldBounds(t *testing.T) {
	p := NewPipeline()

	doc := Defaults()
	doc.Appearance.FontSize = 100

	findings := p.Run(doc)
	if len(findings) != 1 {
		t.Fatalf("Run() = %v, want one finding", findings)
	}
	f := findings[0]
	if f.Path != "appearance.fontSize" {
		t.Errorf("finding path = %q, want appearance.fontSize", f.Path)
	}
	if f.Severity != SeverityError {
		t.Errorf("finding severity = %q, want error", f.Severity)
	}
}

func TestPipeline_CrossCategorySigning(t *testing.T) {
	p := NewPipeline()

	doc := Defaults()
	doc.VersionControl.SignCommits = true

	findings := p.Run(doc)
	paths := findingPaths(findings)
	if !paths["general.authorEmail"] {
		t.Errorf("expected finding at general.authorEmail, got %v", findings)
	}
	if !paths["versionControl.signingKeyPath"] {
		t.Errorf("expected finding at versionControl.signingKeyPath, got %v", findings)
	}

	// Fixing both clears the findings.
	doc.General.AuthorEmail = "dev@example.com"
	doc.VersionControl.SigningKeyPath = "/home/dev/.keys/signing"
	if got := p.Run(doc); len(got) != 0 {
		t.Errorf("configured signing still produced findings: %v", got)
	}
}

func TestPipeline_SyncRequiresBackend(t *testing.T) {
	p := NewPipeline()

	doc := Defaults()
	doc.Sync.Enabled = true

	findings := p.Run(doc)
	if !findingPaths(findings)["backends.primaryURL"] {
		t.Errorf("expected finding at backends.primaryURL, got %v", findings)
	}

	doc.Backends.PrimaryURL = "https://settings.example.com"
	if got := p.Run(doc); len(got) != 0 {
		t.Errorf("configured backend still produced findings: %v", got)
	}
}

func TestPipeline_Warnings(t *testing.T) {
	p := NewPipeline()

	doc := Defaults()
	doc.Editor.AutoSaveDelayMs = 200

	findings := p.Run(doc)
	if len(findings) != 1 {
		t.Fatalf("Run() = %v, want one finding", findings)
	}
	if findings[0].Severity != SeverityWarning {
		t.Errorf("severity = %q, want warning", findings[0].Severity)
	}
	if HasErrors(findings) {
		t.Error("warnings must not count as errors")
	}
}

func TestPipeline_PanickingRuleIsDefect(t *testing.T) {
	p := NewPipeline()
	p.Register(func(Document) []Finding {
		panic("boom")
	})

	var defectIndex = -1
	p.OnDefect(func(ruleIndex int, _ any) {
		defectIndex = ruleIndex
	})

	findings := p.Run(Defaults())
	if len(findings) != 0 {
		t.Errorf("panicking rule leaked findings: %v", findings)
	}
	if defectIndex < 0 {
		t.Error("defect handler was not invoked")
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Finding{{Severity: SeverityWarning}}) {
		t.Error("HasErrors(warning) = true")
	}
	if !HasErrors([]Finding{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Error("HasErrors(warning+error) = false")
	}
}

func findingPaths(findings []Finding) map[string]bool {
	paths := make(map[string]bool)
	for _, f := range findings {
		paths[f.Path] = true
	}
	return paths
}
