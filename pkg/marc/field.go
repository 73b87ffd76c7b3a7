package marc

// LinkStatus describes the state of an instance-to-authority link carried on
// a bibliographic field.
type LinkStatus string

// Link statuses reported alongside link details.
const (
	LinkStatusActual LinkStatus = "ACTUAL"
	LinkStatusNew    LinkStatus = "NEW"
	LinkStatusError  LinkStatus = "ERROR"
)

// LinkDetails records an existing association between a bibliographic field
// and an authority record, when one is already known.
type LinkDetails struct {
	AuthorityID string     `json:"authorityId,omitempty"`
	NaturalID   string     `json:"naturalId,omitempty"`
	RuleID      int        `json:"ruleId,omitempty"`
	Status      LinkStatus `json:"status,omitempty"`
	ErrorCause  string     `json:"errorCause,omitempty"`
}

// Field is one parsed MARC field occurrence: a 3-character tag, two
// single-character indicators, an ordered subfield sequence, and optional
// link details. A grouped code-to-values index is derived from the ordered
// sequence and rebuilt whenever the sequence is replaced, so the grouped and
// ordered views never diverge.
type Field struct {
	Tag         string       `json:"tag"`
	Ind1        string       `json:"ind1,omitempty"`
	Ind2        string       `json:"ind2,omitempty"`
	LinkDetails *LinkDetails `json:"linkDetails,omitempty"`

	subfields []Subfield
	byCode    map[string][]Subfield
}

// NewField creates a Field from a tag, two indicators, and an ordered
// subfield sequence.
func NewField(tag, ind1, ind2 string, subfields []Subfield) *Field {
	f := &Field{Tag: tag, Ind1: ind1, Ind2: ind2}
	f.SetSubfields(subfields)
	return f
}

// SetSubfields atomically replaces the ordered subfield sequence and rebuilds
// the derived code index. This is the only mutation path for subfields; there
// is no partial-update API.
func (f *Field) SetSubfields(subfields []Subfield) {
	ordered := make([]Subfield, len(subfields))
	copy(ordered, subfields)

	index := make(map[string][]Subfield, len(ordered))
	for _, sf := range ordered {
		index[sf.Code] = append(index[sf.Code], sf)
	}

	f.subfields = ordered
	f.byCode = index
}

// Subfields returns all occurrences of the given code, in original order.
// Absent codes yield an empty result. The returned slice is a copy; writing
// through it cannot desync the grouped and ordered views.
func (f *Field) Subfields(code string) []Subfield {
	return copySubfields(f.byCode[code])
}

// AllSubfields returns a copy of the ordered subfield sequence.
func (f *Field) AllSubfields() []Subfield {
	return copySubfields(f.subfields)
}

func copySubfields(subfields []Subfield) []Subfield {
	if subfields == nil {
		return nil
	}
	out := make([]Subfield, len(subfields))
	copy(out, subfields)
	return out
}

// IDSubfields returns the occurrences of the reserved linked-authority-id
// subfield.
func (f *Field) IDSubfields() []Subfield {
	return f.Subfields(IDSubfieldCode)
}

// NaturalIDSubfields returns the occurrences of the reserved natural-id
// subfield.
func (f *Field) NaturalIDSubfields() []Subfield {
	return f.Subfields(NaturalIDSubfieldCode)
}

// Has reports whether the field carries at least one subfield with the given
// code.
func (f *Field) Has(code string) bool {
	return len(f.byCode[code]) > 0
}

// Equal reports deep value equality of two fields, ignoring link details.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Tag != other.Tag || f.Ind1 != other.Ind1 || f.Ind2 != other.Ind2 {
		return false
	}
	if len(f.subfields) != len(other.subfields) {
		return false
	}
	for i := range f.subfields {
		if f.subfields[i] != other.subfields[i] {
			return false
		}
	}
	return true
}
