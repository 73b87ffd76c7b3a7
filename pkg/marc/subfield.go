// Package marc provides the parsed MARC field model shared by the linking
// rule table, the suggestion resolver, and the change diff engine. The types
// here are plain data holders: absent subfield codes yield empty results,
// never errors, and nothing in this package performs I/O.
package marc

// Reserved subfield codes recognized across every linkable field.
const (
	// IDSubfieldCode marks the subfield carrying the linked authority's
	// internal identifier.
	IDSubfieldCode = "9"

	// NaturalIDSubfieldCode marks the subfield carrying the authority's
	// natural identifier (e.g. an LCCN).
	NaturalIDSubfieldCode = "0"
)

// Subfield is a single MARC subfield occurrence: a one-character code and
// its value. Subfields have no identity beyond value equality.
type Subfield struct {
	Code  string `json:"code" yaml:"code"`
	Value string `json:"value" yaml:"value"`
}

// NewSubfield creates a Subfield from a code and value.
func NewSubfield(code, value string) Subfield {
	return Subfield{Code: code, Value: value}
}
