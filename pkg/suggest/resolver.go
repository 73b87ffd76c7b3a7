// Package suggest resolves bibliographic fields to candidate authority
// records: it extracts candidate identifiers from a field, looks them up
// against the authority store through the configured search strategy, and
// requires exactly one match before a link can be suggested.
package suggest

import (
	"context"
	"strings"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/marc"
)

// SearchParameter selects how candidate identifiers are matched against the
// authority store.
type SearchParameter string

// Supported search parameters.
const (
	// SearchByID matches candidates against internal authority identifiers.
	SearchByID SearchParameter = "AUTHORITY_ID"

	// SearchByNaturalID matches candidates against natural identifiers.
	SearchByNaturalID SearchParameter = "NATURAL_ID"
)

// Store is the authority lookup collaborator. Both lookups are restricted to
// non-deleted records by contract and return zero or more matches.
type Store interface {
	ByIDs(ctx context.Context, ids []string) ([]*marc.Authority, error)
	ByNaturalIDs(ctx context.Context, naturalIDs []string) ([]*marc.Authority, error)
}

// Suggestion is a successful resolution: the single authority the field
// should link to.
type Suggestion struct {
	Authority *marc.Authority
}

// lookupFunc is one search-parameter delegate bound to a store.
type lookupFunc func(ctx context.Context, candidates []string) ([]*marc.Authority, error)

// Resolver finds the authority record a bibliographic field should link to.
// The delegate per search parameter is resolved once at construction and
// reused; selection is a plain map lookup.
type Resolver struct {
	parameter  SearchParameter
	strategies map[SearchParameter]lookupFunc
	trimPrefix bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTrimNaturalIDPrefix controls whether a single leading prefix character
// is trimmed from natural-id subfield values before lookup (the subfield-zero
// convention of some source formats).
func WithTrimNaturalIDPrefix(enabled bool) Option {
	return func(r *Resolver) {
		r.trimPrefix = enabled
	}
}

// NewResolver creates a Resolver over the given store, matching by the given
// search parameter. An unknown parameter is rejected.
func NewResolver(store Store, parameter SearchParameter, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		parameter: parameter,
		strategies: map[SearchParameter]lookupFunc{
			SearchByID:        store.ByIDs,
			SearchByNaturalID: store.ByNaturalIDs,
		},
	}
	if _, ok := r.strategies[parameter]; !ok {
		return nil, errors.NewValidationError("searchParameter", string(parameter),
			"unknown authority search parameter")
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Suggest resolves the field's candidate identifiers to exactly one
// non-deleted authority record and fills the field's link details with the
// result. Zero matches and ambiguous matches are reported as suggestion
// errors carrying the NO_SUGGESTIONS / MORE_THEN_ONE_SUGGESTIONS codes.
func (r *Resolver) Suggest(ctx context.Context, field *marc.Field) (*Suggestion, error) {
	candidates := r.candidates(field)
	if len(candidates) == 0 {
		return nil, errors.NewSuggestionError(errors.NoSuggestions, field.Tag)
	}

	matches, err := r.strategies[r.parameter](ctx, candidates)
	if err != nil {
		return nil, errors.NewIntegrationError("authority-store", "", 1, err)
	}

	switch len(matches) {
	case 0:
		return nil, errors.NewSuggestionError(errors.NoSuggestions, field.Tag)
	case 1:
		authority := matches[0]
		field.LinkDetails = &marc.LinkDetails{
			AuthorityID: authority.ID,
			NaturalID:   authority.NaturalID,
			Status:      marc.LinkStatusNew,
		}
		return &Suggestion{Authority: authority}, nil
	default:
		return nil, errors.NewSuggestionError(errors.MoreThenOneSuggestions, field.Tag)
	}
}

// candidates extracts the candidate identifier set from a field: the
// explicit link-details identifier when present, otherwise every natural-id
// subfield occurrence, deduplicated in order.
func (r *Resolver) candidates(field *marc.Field) []string {
	if ld := field.LinkDetails; ld != nil && ld.AuthorityID != "" {
		return []string{ld.AuthorityID}
	}

	var out []string
	seen := make(map[string]bool)
	for _, sf := range field.NaturalIDSubfields() {
		value := strings.TrimSpace(sf.Value)
		if r.trimPrefix && len(value) > 1 {
			value = value[1:]
		}
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}
