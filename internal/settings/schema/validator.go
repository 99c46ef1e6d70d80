package schema

import (
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/language"
)

// Violation is a single constraint failure addressed by dotted path.
type Violation struct {
	// Path is the dot-separated path to the offending field.
	Path string
	// Message describes the failure.
	Message string
}

// Validator checks documents in map form against a Schema.
type Validator struct {
	schema Schema

	// Pattern cache
	patternCache sync.Map // map[string]*regexp.Regexp
}

// NewValidator creates a validator for the given schema.
func NewValidator(s Schema) *Validator {
	return &Validator{schema: s}
}

// Validate checks every schema-declared field present in doc and returns
// all violations. Fields absent from doc are not reported; completeness is
// the migration layer's job, not the validator's.
func (v *Validator) Validate(doc map[string]any) []Violation {
	var out []Violation
	for category, fields := range v.schema {
		catVal, ok := doc[category]
		if !ok {
			continue
		}
		catMap, ok := catVal.(map[string]any)
		if !ok {
			out = append(out, Violation{Path: category, Message: "category must be an object"})
			continue
		}
		for name, field := range fields {
			value, ok := catMap[name]
			if !ok {
				continue
			}
			path := category + "." + name
			out = append(out, v.validateField(path, value, field)...)
		}
	}
	return out
}

// ValidateField checks a single value against the constraints declared for
// category.field. Unknown fields produce no violations.
func (v *Validator) ValidateField(category, field string, value any) []Violation {
	f := v.schema.Lookup(category, field)
	if f == nil {
		return nil
	}
	return v.validateField(category+"."+field, value, f)
}

func (v *Validator) validateField(path string, value any, f *Field) []Violation {
	var out []Violation

	if !matchesType(value, f.Type) {
		out = append(out, Violation{
			Path:    path,
			Message: fmt.Sprintf("expected %s, got %s", f.Type, typeName(value)),
		})
		return out
	}

	switch f.Type {
	case TypeInteger, TypeNumber:
		n := toFloat64(value)
		if f.Minimum != nil && n < *f.Minimum {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("value %v is below minimum %v", value, *f.Minimum),
			})
		}
		if f.Maximum != nil && n > *f.Maximum {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("value %v is above maximum %v", value, *f.Maximum),
			})
		}
	case TypeString:
		s := value.(string)
		if len(f.Enum) > 0 && !containsString(f.Enum, s) {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("%q is not one of %v", s, f.Enum),
			})
		}
		if f.Pattern != "" && !v.matchPattern(s, f.Pattern) {
			out = append(out, Violation{
				Path:    path,
				Message: fmt.Sprintf("%q does not match pattern %s", s, f.Pattern),
			})
		}
		if f.Format != "" && s != "" {
			if msg := checkFormat(s, f.Format); msg != "" {
				out = append(out, Violation{Path: path, Message: msg})
			}
		}
	}

	return out
}

// checkFormat validates semantic string formats. Empty strings are accepted
// by the caller; "must be set" rules belong to document-level validators.
func checkFormat(value, format string) string {
	switch format {
	case FormatURL:
		u, err := url.Parse(value)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("invalid URL: %s", value)
		}
	case FormatColor:
		if _, err := colorful.Hex(value); err != nil {
			return fmt.Sprintf("invalid hex color: %s", value)
		}
	case FormatLanguage:
		if _, err := language.Parse(value); err != nil {
			return fmt.Sprintf("invalid language tag: %s", value)
		}
	}
	return ""
}

// matchPattern checks a string against a cached compiled pattern.
func (v *Validator) matchPattern(value, pattern string) bool {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(value)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(value)
}

func matchesType(value any, typ string) bool {
	switch typ {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		return isNumber(value)
	case TypeInteger:
		return isInteger(value)
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}

func isInteger(v any) bool {
	switch val := v.(type) {
	case int, int32, int64:
		return true
	case float32:
		return float32(int32(val)) == val
	case float64:
		return float64(int64(val)) == val
	default:
		return false
	}
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
