package mangaingest

import "time"

// FieldKind controls how extracted strings are post-processed.
type FieldKind int

const (
	// FieldText joins the text of every matched element with newlines.
	FieldText FieldKind = iota
	// FieldList splits matches on the field delimiter into distinct tokens.
	FieldList
	// FieldDate parses the first match, falling back to the extraction clock.
	FieldDate
	// FieldURL resolves the first match against the page URL.
	FieldURL
	// FieldImages collects every image URL among the matches, in order.
	FieldImages
)

// Strategy is one candidate way of locating a field in a document.
type Strategy struct {
	// Selector is a CSS selector. Cascadia pseudo-classes such as
	// :contains("label") are supported.
	Selector string

	// Position selects a single match, counted from 1. Zero uses every match.
	Position int

	// Attrs are read in order and the first non-empty value wins.
	// Empty means the element text.
	Attrs []string
}

// FieldSpec describes how to extract one named field.
type FieldSpec struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Strategies []Strategy

	// Delimiter splits FieldList values. Defaults to ",".
	Delimiter string

	// Ignore lists placeholder values (compared case-insensitively) that
	// count as empty, such as "Updating" or "N/A".
	Ignore []string
}

// Fields holds the values extracted for a set of FieldSpecs.
type Fields struct {
	values map[string][]string
	dates  map[string]time.Time
}

// NewFields returns an empty Fields.
func NewFields() *Fields {
	return &Fields{
		values: make(map[string][]string),
		dates:  make(map[string]time.Time),
	}
}

// Set stores values for name.
func (f *Fields) Set(name string, values ...string) {
	f.values[name] = values
}

// SetDate stores the parsed date for name.
func (f *Fields) SetDate(name string, t time.Time) {
	f.dates[name] = t
}

// Has reports whether any strategy produced a value for name.
func (f *Fields) Has(name string) bool {
	return len(f.values[name]) > 0
}

// Text returns the first value for name, or "".
func (f *Fields) Text(name string) string {
	if v := f.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// List returns every value for name.
func (f *Fields) List(name string) []string {
	return f.values[name]
}

// Date returns the parsed or fallback date for name.
func (f *Fields) Date(name string) time.Time {
	return f.dates[name]
}

// Extractor applies field specs to an HTML document.
type Extractor interface {
	// Extract evaluates specs against html. pageURL resolves relative links.
	// Returns EEXTRACTION if a required field yields nothing.
	Extract(html, pageURL string, specs []FieldSpec) (*Fields, error)
}
