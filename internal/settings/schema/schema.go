// Package schema declares the per-field constraints for the settings
// document and validates candidate documents against them.
//
// A Schema is a closed map of category names to field constraint sets.
// Validation never rejects a document; it reports violations addressed by
// dotted path so callers can surface them next to the offending field.
package schema

// Field type constants.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Semantic format constants for string fields.
const (
	FormatURL      = "url"
	FormatColor    = "color"
	FormatLanguage = "language"
)

// Field describes the constraints for a single settings field.
type Field struct {
	Type    string
	Minimum *float64
	Maximum *float64
	Enum    []string
	Pattern string
	Format  string
}

// Category maps field names to their constraints.
type Category map[string]*Field

// Schema maps category names to their field sets.
type Schema map[string]Category

// Lookup returns the field constraints for category.field, or nil if the
// schema does not declare it.
func (s Schema) Lookup(category, field string) *Field {
	c, ok := s[category]
	if !ok {
		return nil
	}
	return c[field]
}

// String creates a string field.
func String() *Field {
	return &Field{Type: TypeString}
}

// Integer creates an integer field.
func Integer() *Field {
	return &Field{Type: TypeInteger}
}

// Number creates a floating-point field.
func Number() *Field {
	return &Field{Type: TypeNumber}
}

// Boolean creates a boolean field.
func Boolean() *Field {
	return &Field{Type: TypeBoolean}
}

// Min sets the inclusive minimum for numeric fields.
func (f *Field) Min(v float64) *Field {
	f.Minimum = &v
	return f
}

// Max sets the inclusive maximum for numeric fields.
func (f *Field) Max(v float64) *Field {
	f.Maximum = &v
	return f
}

// Range sets inclusive minimum and maximum for numeric fields.
func (f *Field) Range(min, max float64) *Field {
	return f.Min(min).Max(max)
}

// Values restricts the field to a fixed value set.
func (f *Field) Values(values ...string) *Field {
	f.Enum = values
	return f
}

// Match sets a regex pattern for string fields.
func (f *Field) Match(pattern string) *Field {
	f.Pattern = pattern
	return f
}

// As sets a semantic format for string fields.
func (f *Field) As(format string) *Field {
	f.Format = format
	return f
}
