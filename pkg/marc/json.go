package marc

import "encoding/json"

// fieldJSON is the wire form of a Field. The ordered subfield sequence is
// the serialized truth; the code index is rebuilt on decode.
type fieldJSON struct {
	Tag         string       `json:"tag"`
	Ind1        string       `json:"ind1,omitempty"`
	Ind2        string       `json:"ind2,omitempty"`
	Subfields   []Subfield   `json:"subfields"`
	LinkDetails *LinkDetails `json:"linkDetails,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{
		Tag:         f.Tag,
		Ind1:        f.Ind1,
		Ind2:        f.Ind2,
		Subfields:   f.subfields,
		LinkDetails: f.LinkDetails,
	})
}

// UnmarshalJSON implements json.Unmarshaler, rebuilding the code index from
// the decoded subfield sequence.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.Tag = w.Tag
	f.Ind1 = w.Ind1
	f.Ind2 = w.Ind2
	f.LinkDetails = w.LinkDetails
	f.SetSubfields(w.Subfields)
	return nil
}
