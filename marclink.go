// Package marclink links bibliographic MARC records to authority records,
// keeps those links consistent when authorities change, and propagates
// authority edits to interested systems. The Linker facade wires the rule
// table, the suggestion resolver, the change diff engine, the classifier and
// batcher, and the emission pipeline behind one entry point.
package marclink

import (
	"context"

	"github.com/agentstation/marclink/pkg/consortium"
	"github.com/agentstation/marclink/pkg/differ"
	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/logging"
	"github.com/agentstation/marclink/pkg/marc"
	"github.com/agentstation/marclink/pkg/rules"
	"github.com/agentstation/marclink/pkg/suggest"
	"github.com/agentstation/marclink/pkg/transport"
)

// Linker is the authority-linking suggestion and change-propagation engine.
type Linker interface {
	// ProcessNotifications classifies a tenant's inbound authority-change
	// notifications, computes subfield deltas for linked updates, and
	// publishes the resulting change events in bounded batches.
	ProcessNotifications(ctx context.Context, tenant string, notifications []events.Notification) (*Result, error)

	// Suggest resolves a bibliographic field to exactly one authority
	// record and fills the field's link details.
	Suggest(ctx context.Context, tenant string, field *marc.Field) (*suggest.Suggestion, error)

	// RefreshRules reloads the tenant's linking rule table snapshot.
	RefreshRules(ctx context.Context, tenant string) error

	// Propagate replays a mutation across the tenant's consortium members.
	Propagate(ctx context.Context, tenant string, recordType consortium.RecordType, op consortium.Operation, fn consortium.ReplayFunc) error
}

// Result summarizes one ProcessNotifications invocation.
type Result struct {
	// Emitted is the number of events successfully handed to the transport.
	Emitted int

	// Batches is the number of published batches.
	Batches int

	// Skipped, NoLinks, and Malformed carry the classifier's bookkeeping.
	Skipped   int
	NoLinks   int
	Malformed int
}

// linker is the internal implementation of the Linker interface.
type linker struct {
	config      *config
	ruleCache   *rules.Cache
	classifier  *events.Classifier
	emitter     *transport.Emitter
	coordinator *consortium.Coordinator
	resolver    *suggest.Resolver
}

// New creates a Linker with the given options. A rule source and a link
// store are required; the transport defaults to an in-memory channel and
// bookkeeping to a no-op.
func New(opts ...Option) (Linker, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.ruleSource == nil {
		return nil, errors.NewValidationError("ruleSource", nil, "a linking rule source is required")
	}
	if c.linkStore == nil {
		return nil, errors.NewValidationError("linkStore", nil, "an instance link store is required")
	}
	if c.transport == nil {
		c.transport = transport.NewChannel()
	}

	l := &linker{config: c}
	l.ruleCache = rules.NewCache(c.ruleSource)
	l.classifier = events.NewClassifier(l.ruleCache, differ.New(), c.linkStore, c.stats)

	emitterOpts := []transport.EmitterOption{
		transport.WithTopicPrefix(c.topicPrefix),
		transport.WithRetryAttempts(c.retryAttempts),
		transport.WithRetryDelay(c.retryDelay),
	}
	l.emitter = transport.NewEmitter(c.transport, emitterOpts...)

	if c.membership != nil {
		l.coordinator = consortium.NewCoordinator(c.membership)
	}
	if c.authorityStore != nil {
		resolver, err := suggest.NewResolver(c.authorityStore, c.searchParameter,
			suggest.WithTrimNaturalIDPrefix(c.trimNaturalID))
		if err != nil {
			return nil, err
		}
		l.resolver = resolver
	}
	return l, nil
}

// ProcessNotifications runs the full pipeline: classify, partition, emit.
// An exhausted-retry publish aborts the current batch and returns the
// integration failure; previously emitted batches stand, and the partial
// Result reports what made it out.
func (l *linker) ProcessNotifications(ctx context.Context, tenant string, notifications []events.Notification) (*Result, error) {
	ctx = l.processingContext(ctx, tenant)

	classified, err := l.classifier.Classify(ctx, tenant, notifications)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Skipped:   classified.Skipped,
		NoLinks:   classified.NoLinks,
		Malformed: classified.Malformed,
	}
	for _, batch := range events.Partition(classified.Events, l.config.partitionSize) {
		if err := l.emitter.Emit(ctx, tenant, batch); err != nil {
			return result, err
		}
		result.Batches++
		result.Emitted += len(batch)
	}
	return result, nil
}

// Suggest resolves a bibliographic field against the authority store. When
// the tenant's rule table covers the field's tag, the rule gates the lookup:
// auto-linking must be enabled and the field must satisfy the rule's
// existence constraints.
func (l *linker) Suggest(ctx context.Context, tenant string, field *marc.Field) (*suggest.Suggestion, error) {
	if l.resolver == nil {
		return nil, errors.NewValidationError("authorityStore", nil, "no authority store configured")
	}
	ctx = l.processingContext(ctx, tenant)

	table, err := l.ruleCache.Table(ctx, tenant)
	if err != nil {
		return nil, err
	}
	rule, ruled := table.ByBibTag(field.Tag)
	if ruled {
		if !rule.AutoLinkingEnabled {
			return nil, errors.NewSuggestionError(errors.DisabledAutoLinking, field.Tag)
		}
		if err := rule.CheckField(field); err != nil {
			return nil, err
		}
	}

	suggestion, err := l.resolver.Suggest(ctx, field)
	if err != nil {
		return nil, err
	}
	if ruled {
		field.LinkDetails.RuleID = rule.ID
	}
	return suggestion, nil
}

// RefreshRules swaps in a fresh rule table snapshot for the tenant.
func (l *linker) RefreshRules(ctx context.Context, tenant string) error {
	_, err := l.ruleCache.Refresh(ctx, tenant)
	return err
}

// Propagate fans a mutation out across the tenant's consortium members.
func (l *linker) Propagate(ctx context.Context, tenant string, recordType consortium.RecordType, op consortium.Operation, fn consortium.ReplayFunc) error {
	if l.coordinator == nil {
		return errors.NewValidationError("membership", nil, "no consortium membership lookup configured")
	}
	return l.coordinator.Propagate(l.processingContext(ctx, tenant), tenant, recordType, op, fn)
}

// processingContext stamps the context with the configured logger and the
// executing tenant.
func (l *linker) processingContext(ctx context.Context, tenant string) context.Context {
	if l.config.logger != nil {
		ctx = logging.WithLogger(ctx, l.config.logger)
	}
	return logging.WithTenant(ctx, tenant)
}
