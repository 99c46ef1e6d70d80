package settings

import (
	"errors"
	"testing"
)

func TestDefaults_RoundTrip(t *testing.T) {
	def := Defaults()

	doc, err := FromMap(def.ToMap(), true)
	if err != nil {
		t.Fatalf("FromMap(defaults) error = %v", err)
	}
	if !doc.Equal(def) {
		t.Error("defaults did not survive a map round trip")
	}
}

func TestDefaults_EveryCategoryPresent(t *testing.T) {
	m := Defaults().ToMap()
	for _, category := range Categories {
		if _, ok := m[category].(map[string]any); !ok {
			t.Errorf("category %q missing from defaults map", category)
		}
	}
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	doc := Defaults()
	clone := doc.Clone()

	clone.Appearance.FontSize = 99
	if doc.Appearance.FontSize == 99 {
		t.Error("mutating a clone changed the original")
	}
}

func TestDocument_Equal(t *testing.T) {
	a := Defaults()
	b := Defaults()
	if !a.Equal(b) {
		t.Error("identical documents compare unequal")
	}

	b.General.Language = "es"
	if a.Equal(b) {
		t.Error("differing documents compare equal")
	}
}

func TestFromMap_StrictRejectsUnknownField(t *testing.T) {
	m := Defaults().ToMap()
	m["appearance"].(map[string]any)["sparkles"] = true

	_, err := FromMap(m, true)
	if !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("FromMap strict error = %v, want ErrUnknownSetting", err)
	}
}

func TestFromMap_StrictRejectsTypeMismatch(t *testing.T) {
	m := Defaults().ToMap()
	m["appearance"].(map[string]any)["fontSize"] = "huge"

	_, err := FromMap(m, true)
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("FromMap strict error = %v, want *TypeError", err)
	}
}

func TestFromMap_LenientDropsUnknownField(t *testing.T) {
	m := Defaults().ToMap()
	m["appearance"].(map[string]any)["sparkles"] = true

	doc, err := FromMap(m, false)
	if err != nil {
		t.Fatalf("FromMap lenient error = %v", err)
	}
	if !doc.Equal(Defaults()) {
		t.Error("unknown field should be dropped without other changes")
	}
}
