// Package rules provides the instance-to-authority linking rule table: the
// versioned, tenant-scoped mapping between bibliographic field tags and
// authority field tags, with the subfield copy and rewrite rules applied when
// authority data is pushed into bibliographic fields.
package rules

import (
	"fmt"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/marc"
)

// SubfieldModification rewrites a subfield's emitted code from Source to
// Target before copying, used when the authority's storage code differs from
// the code the bibliographic field expects.
type SubfieldModification struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Validation holds the constraints checked when a link is created or
// refreshed against a rule. Existence is enforced by CheckField at
// suggestion time.
type Validation struct {
	// Existence maps subfield codes to whether they must be present on the
	// bibliographic field for the rule to apply. A code mapped to false
	// excludes fields carrying it, such as name-title entries under a rule
	// that only links plain names.
	Existence map[string]bool `json:"existence,omitempty" yaml:"existence,omitempty"`

	// NonRepeatableRequired flags rules whose bibliographic field must occur
	// at most once per record. This is a record-level constraint; it is
	// enforced by the link-creation collaborator, which sees the whole
	// record, not by the per-field suggestion path.
	NonRepeatableRequired bool `json:"nonRepeatableRequired,omitempty" yaml:"nonRepeatableRequired,omitempty"`
}

// Rule is one row of the linking rule table: which authority field feeds
// which bibliographic field, which authority subfields are eligible for
// copying, and the code rewrites applied before the copy.
type Rule struct {
	ID                 int                    `json:"id" yaml:"id"`
	AuthorityField     string                 `json:"authorityField" yaml:"authorityField"`
	BibField           string                 `json:"bibField" yaml:"bibField"`
	AuthoritySubfields []string               `json:"authoritySubfields" yaml:"authoritySubfields"`
	Modifications      []SubfieldModification `json:"subfieldModifications,omitempty" yaml:"subfieldModifications,omitempty"`
	Validation         Validation             `json:"validation,omitempty" yaml:"validation,omitempty"`
	AutoLinkingEnabled bool                   `json:"autoLinkingEnabled" yaml:"autoLinkingEnabled"`
}

// Validate checks the rule for malformed configuration. Two source subfields
// rewriting to the same target code is rejected rather than silently
// overwritten, since it indicates a malformed rule.
func (r Rule) Validate() error {
	if len(r.AuthorityField) != 3 {
		return errors.NewValidationError("authorityField", r.AuthorityField,
			"authority field tag must be 3 characters")
	}
	if len(r.BibField) != 3 {
		return errors.NewValidationError("bibField", r.BibField,
			"bibliographic field tag must be 3 characters")
	}
	if len(r.AuthoritySubfields) == 0 {
		return errors.NewValidationError("authoritySubfields", nil,
			fmt.Sprintf("rule %s -> %s declares no eligible subfields", r.AuthorityField, r.BibField))
	}

	eligible := make(map[string]bool, len(r.AuthoritySubfields))
	for _, code := range r.AuthoritySubfields {
		if len(code) != 1 {
			return errors.NewValidationError("authoritySubfields", code,
				"subfield codes must be a single character")
		}
		eligible[code] = true
	}

	targets := make(map[string]string, len(r.Modifications))
	for _, mod := range r.Modifications {
		if !eligible[mod.Source] {
			return errors.NewValidationError("subfieldModifications", mod.Source,
				fmt.Sprintf("modification source %q is not an eligible subfield of rule %s -> %s",
					mod.Source, r.AuthorityField, r.BibField))
		}
		if prev, dup := targets[mod.Target]; dup {
			return errors.NewValidationError("subfieldModifications", mod.Target,
				fmt.Sprintf("sources %q and %q both rewrite to target %q in rule %s -> %s",
					prev, mod.Source, mod.Target, r.AuthorityField, r.BibField))
		}
		targets[mod.Target] = mod.Source
	}
	return nil
}

// CheckField validates a bibliographic field against the rule's existence
// constraints.
func (r Rule) CheckField(f *marc.Field) error {
	for code, mustExist := range r.Validation.Existence {
		if f.Has(code) != mustExist {
			if mustExist {
				return errors.NewValidationError("subfield", code,
					fmt.Sprintf("field %s requires subfield %q under rule %d", f.Tag, code, r.ID))
			}
			return errors.NewValidationError("subfield", code,
				fmt.Sprintf("field %s must not carry subfield %q under rule %d", f.Tag, code, r.ID))
		}
	}
	return nil
}

// TargetCode returns the code a subfield is emitted under after the rule's
// modifications: the declared rewrite target if one covers the code,
// otherwise the original code.
func (r Rule) TargetCode(code string) string {
	for _, mod := range r.Modifications {
		if mod.Source == code {
			return mod.Target
		}
	}
	return code
}

// Eligible reports whether the given authority subfield code is eligible for
// copying under this rule.
func (r Rule) Eligible(code string) bool {
	for _, c := range r.AuthoritySubfields {
		if c == code {
			return true
		}
	}
	return false
}
