// Package differ computes the subfield deltas that must be pushed into
// linked bibliographic fields when an authority record changes. Output
// ordering is deterministic: identical inputs produce byte-identical change
// lists, which idempotent re-delivery and test reproducibility both rely on.
package differ

// SubfieldChange is the output unit of the diff: the value a bibliographic
// field's subfield must become. An empty value clears the subfield.
type SubfieldChange struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// FieldChange is the ordered change list for one bibliographic field tag.
type FieldChange struct {
	Field     string           `json:"field"`
	Subfields []SubfieldChange `json:"subfields"`
}
