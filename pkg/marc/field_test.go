package marc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldGroupedViewTracksOrderedView(t *testing.T) {
	field := NewField("100", "1", " ", []Subfield{
		{Code: "a", Value: "Woolf, Virginia,"},
		{Code: "d", Value: "1882-1941"},
		{Code: "0", Value: "n79041870"},
	})

	require.Len(t, field.Subfields("a"), 1)
	assert.Equal(t, "Woolf, Virginia,", field.Subfields("a")[0].Value)
	assert.True(t, field.Has("d"))
	assert.Empty(t, field.Subfields("z"), "absent codes yield empty results, not errors")

	// Replacing the sequence must atomically rebuild the grouped view.
	field.SetSubfields([]Subfield{
		{Code: "a", Value: "Woolf, Virginia"},
		{Code: "t", Value: "To the lighthouse"},
	})

	require.Len(t, field.Subfields("a"), 1)
	assert.Equal(t, "Woolf, Virginia", field.Subfields("a")[0].Value)
	assert.False(t, field.Has("d"), "no stale entries after replacement")
	assert.False(t, field.Has("0"))
	assert.True(t, field.Has("t"))
	assert.Len(t, field.AllSubfields(), 2)
}

func TestFieldViewsAreInsulatedFromCallerWrites(t *testing.T) {
	field := NewField("100", "1", " ", []Subfield{
		{Code: "a", Value: "Woolf, Virginia,"},
		{Code: "d", Value: "1882-1941"},
	})

	field.Subfields("a")[0].Value = "scribbled"
	field.AllSubfields()[1].Value = "scribbled"

	assert.Equal(t, "Woolf, Virginia,", field.Subfields("a")[0].Value,
		"writes through a returned slice never reach the field")
	assert.Equal(t, "1882-1941", field.AllSubfields()[1].Value)
}

func TestFieldRepeatedSubfieldCodes(t *testing.T) {
	field := NewField("400", " ", " ", []Subfield{
		{Code: "a", Value: "first"},
		{Code: "a", Value: "second"},
		{Code: "0", Value: "n0001"},
		{Code: "0", Value: "n0002"},
	})

	occurrences := field.Subfields("a")
	require.Len(t, occurrences, 2)
	assert.Equal(t, "first", occurrences[0].Value, "grouped view preserves original order")
	assert.Equal(t, "second", occurrences[1].Value)

	naturalIDs := field.NaturalIDSubfields()
	require.Len(t, naturalIDs, 2)
	assert.Equal(t, "n0001", naturalIDs[0].Value)
}

func TestFieldReservedCodes(t *testing.T) {
	field := NewField("600", " ", "0", []Subfield{
		{Code: "a", Value: "Economics"},
		{Code: "0", Value: "sh85040850"},
		{Code: "9", Value: "4f2f7ff1-2c8b-4a4e-9b3a-0d6c5e2a81f0"},
	})

	require.Len(t, field.NaturalIDSubfields(), 1)
	assert.Equal(t, "sh85040850", field.NaturalIDSubfields()[0].Value)
	require.Len(t, field.IDSubfields(), 1)
}

func TestFieldEqual(t *testing.T) {
	subfields := []Subfield{{Code: "a", Value: "x"}, {Code: "b", Value: "y"}}
	a := NewField("100", "1", " ", subfields)
	b := NewField("100", "1", " ", subfields)
	assert.True(t, a.Equal(b))

	b.SetSubfields([]Subfield{{Code: "a", Value: "x"}})
	assert.False(t, a.Equal(b))

	c := NewField("110", "1", " ", subfields)
	assert.False(t, a.Equal(c), "tag differences are not equal")
}

func TestFieldJSONRebuildsIndex(t *testing.T) {
	original := NewField("100", "1", " ", []Subfield{
		{Code: "a", Value: "Dickens, Charles,"},
		{Code: "0", Value: "n78087929"},
	})
	original.LinkDetails = &LinkDetails{AuthorityID: "auth-1", Status: LinkStatusActual}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Field
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.True(t, original.Equal(&decoded))
	require.Len(t, decoded.Subfields("a"), 1, "code index is rebuilt on decode")
	require.NotNil(t, decoded.LinkDetails)
	assert.Equal(t, "auth-1", decoded.LinkDetails.AuthorityID)
}

func TestAuthorityFieldsByTag(t *testing.T) {
	authority := &Authority{
		ID:        "auth-1",
		NaturalID: "n0001",
		Fields: []*Field{
			NewField("100", " ", " ", []Subfield{{Code: "a", Value: "heading"}}),
			NewField("400", " ", " ", []Subfield{{Code: "a", Value: "see-from 1"}}),
			NewField("400", " ", " ", []Subfield{{Code: "a", Value: "see-from 2"}}),
		},
	}

	assert.Len(t, authority.FieldsByTag("400"), 2)
	assert.Nil(t, authority.FieldByTag("500"))
	require.NotNil(t, authority.FieldByTag("100"))
}

func TestAuthorityEqual(t *testing.T) {
	build := func() *Authority {
		return &Authority{
			ID:        "auth-1",
			NaturalID: "n0001",
			Leader:    "00000cz  a2200000n  4500",
			Fields: []*Field{
				NewField("100", "1", " ", []Subfield{{Code: "a", Value: "heading"}}),
			},
		}
	}

	a, b := build(), build()
	assert.True(t, a.Equal(b))

	b.NaturalID = "n0002"
	assert.False(t, a.Equal(b))

	c := build()
	c.Fields[0].SetSubfields([]Subfield{{Code: "a", Value: "changed"}})
	assert.False(t, a.Equal(c))
}
