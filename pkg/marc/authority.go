package marc

// Authority is a fully parsed authority record. Instances are owned by a
// single change-processing invocation and never mutated after construction.
type Authority struct {
	// ID is the record's internal identifier (a UUID string).
	ID string `json:"id"`

	// NaturalID is the human-assigned, source-file-scoped code identifying
	// the record (e.g. an LCCN).
	NaturalID string `json:"naturalId"`

	// SourceFileID identifies the authority source file, which controls
	// natural-id formatting and validation.
	SourceFileID string `json:"sourceFileId,omitempty"`

	// Leader is the raw MARC leader.
	Leader string `json:"leader,omitempty"`

	// Fields is the ordered field sequence.
	Fields []*Field `json:"fields"`
}

// FieldsByTag returns all field occurrences with the given tag, in record
// order.
func (a *Authority) FieldsByTag(tag string) []*Field {
	var out []*Field
	for _, f := range a.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// FieldByTag returns the first field occurrence with the given tag, or nil.
func (a *Authority) FieldByTag(tag string) *Field {
	for _, f := range a.Fields {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// Equal reports semantic equality of two authority records: identifier,
// natural identifier, leader, and the full ordered field content.
func (a *Authority) Equal(other *Authority) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.ID != other.ID || a.NaturalID != other.NaturalID || a.Leader != other.Leader {
		return false
	}
	if len(a.Fields) != len(other.Fields) {
		return false
	}
	for i := range a.Fields {
		if !a.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return true
}
