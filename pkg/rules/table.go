package rules

import (
	"fmt"

	"github.com/agentstation/marclink/pkg/errors"
)

// Table is an immutable snapshot of the linking rule table. A Table never
// mutates after construction, so concurrent readers need no locking and a
// diff computed against a stale snapshot is still internally consistent.
type Table struct {
	rules          []Rule
	byAuthorityTag map[string][]Rule
	byBibTag       map[string]Rule
}

// NewTable builds a snapshot from the given rules, in declared order. Every
// rule is validated, and construction fails if two rules claim the same
// bibliographic field tag: the bib-tag lookup must be a function, never
// ambiguous.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{
		rules:          make([]Rule, len(rules)),
		byAuthorityTag: make(map[string][]Rule),
		byBibTag:       make(map[string]Rule, len(rules)),
	}
	copy(t.rules, rules)

	for _, r := range t.rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if prev, exists := t.byBibTag[r.BibField]; exists {
			return nil, errors.NewValidationError("bibField", r.BibField,
				fmt.Sprintf("bib field %s is claimed by both authority fields %s and %s",
					r.BibField, prev.AuthorityField, r.AuthorityField))
		}
		t.byBibTag[r.BibField] = r
		t.byAuthorityTag[r.AuthorityField] = append(t.byAuthorityTag[r.AuthorityField], r)
	}
	return t, nil
}

// Rules returns all rules in declared order.
func (t *Table) Rules() []Rule {
	return t.rules
}

// ByAuthorityTag returns the rules governed by the given authority field
// tag. An unconfigured tag yields an empty result.
func (t *Table) ByAuthorityTag(tag string) []Rule {
	return t.byAuthorityTag[tag]
}

// ByBibTag returns the single rule governing the given bibliographic field
// tag. A false result means the field is not linkable, a normal outcome
// rather than an error.
func (t *Table) ByBibTag(tag string) (Rule, bool) {
	r, ok := t.byBibTag[tag]
	return r, ok
}

// Len returns the number of rules in the snapshot.
func (t *Table) Len() int {
	return len(t.rules)
}
