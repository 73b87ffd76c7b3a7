package differ

import (
	"fmt"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/marc"
	"github.com/agentstation/marclink/pkg/rules"
)

// Differ handles change detection between authority record snapshots.
type Differ interface {
	// Changes compares an authority's old parsed content (nil when the
	// record previously had no field-level detail) against its new content
	// and returns, per governed bibliographic field tag, the ordered
	// subfield changes to apply. The rule table snapshot is read-only for
	// the duration of the call.
	Changes(old, updated *marc.Authority, table *rules.Table) ([]FieldChange, error)
}

// differ is the default implementation of Differ.
type differ struct{}

// New creates a new Differ.
func New() Differ {
	return differ{}
}

// Changes computes the per-bib-field subfield deltas for one authority
// update. Rules are evaluated in the table's declared order and subfields in
// the authority's original order, with the implicit natural-id change
// appended last, so the output ordering is fully determined by the inputs.
func (d differ) Changes(old, updated *marc.Authority, table *rules.Table) ([]FieldChange, error) {
	if updated == nil {
		return nil, errors.NewValidationError("authority", nil, "updated content is required")
	}

	naturalChanged := old != nil && old.NaturalID != updated.NaturalID

	var out []FieldChange
	for _, rule := range table.Rules() {
		newField := updated.FieldByTag(rule.AuthorityField)
		var oldField *marc.Field
		if old != nil {
			oldField = old.FieldByTag(rule.AuthorityField)
		}
		if newField == nil && oldField == nil {
			continue
		}

		changes, err := diffField(rule, oldField, newField)
		if err != nil {
			return nil, err
		}

		// Every linked bib field tracks the current natural identifier,
		// regardless of per-field rules.
		if naturalChanged {
			changes = append(changes, SubfieldChange{
				Code:  marc.NaturalIDSubfieldCode,
				Value: updated.NaturalID,
			})
		}

		if len(changes) > 0 {
			out = append(out, FieldChange{Field: rule.BibField, Subfields: changes})
		}
	}
	return out, nil
}

// diffField computes the rule-governed subfield changes between two
// occurrences of one authority field. Changed and added subfields come first
// in the new field's order, followed by removals in the old field's order.
func diffField(rule rules.Rule, oldField, newField *marc.Field) ([]SubfieldChange, error) {
	oldValues, err := eligibleValues(rule, oldField)
	if err != nil {
		return nil, err
	}
	newValues, err := eligibleValues(rule, newField)
	if err != nil {
		return nil, err
	}

	var changes []SubfieldChange
	if newField != nil {
		seen := make(map[string]bool, len(newValues))
		for _, sf := range newField.AllSubfields() {
			if !rule.Eligible(sf.Code) {
				continue
			}
			code := rule.TargetCode(sf.Code)
			if seen[code] {
				continue
			}
			seen[code] = true
			if oldValues[code] != newValues[code] {
				changes = append(changes, SubfieldChange{Code: code, Value: newValues[code]})
			}
		}
	}

	if oldField != nil {
		for _, sf := range oldField.AllSubfields() {
			if !rule.Eligible(sf.Code) {
				continue
			}
			code := rule.TargetCode(sf.Code)
			if _, stillPresent := newValues[code]; !stillPresent {
				changes = append(changes, SubfieldChange{Code: code, Value: ""})
				newValues[code] = "" // emit each removal once
			}
		}
	}
	return changes, nil
}

// eligibleValues collects a field's rule-eligible subfield values keyed by
// their post-modification target code. Repeated occurrences of one source
// code are joined in order, matching how the values are copied into the
// bibliographic field. Two distinct source codes landing on the same target
// indicates a malformed rule and is rejected.
func eligibleValues(rule rules.Rule, field *marc.Field) (map[string]string, error) {
	values := make(map[string]string)
	if field == nil {
		return values, nil
	}
	sources := make(map[string]string)
	for _, sf := range field.AllSubfields() {
		if !rule.Eligible(sf.Code) {
			continue
		}
		target := rule.TargetCode(sf.Code)
		if prev, ok := sources[target]; ok && prev != sf.Code {
			return nil, errors.NewValidationError("subfieldModifications", target,
				fmt.Sprintf("subfields %q and %q of authority field %s both map to target %q",
					prev, sf.Code, rule.AuthorityField, target))
		}
		sources[target] = sf.Code
		if existing, ok := values[target]; ok {
			values[target] = existing + " " + sf.Value
		} else {
			values[target] = sf.Value
		}
	}
	return values, nil
}
