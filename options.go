package marclink

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/marclink/pkg/consortium"
	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/rules"
	"github.com/agentstation/marclink/pkg/suggest"
	"github.com/agentstation/marclink/pkg/transport"
)

// Option is a function that configures a Linker instance
type Option func(*config) error

// config carries the collaborators and tuning knobs wired into a Linker.
type config struct {
	ruleSource      rules.Source
	authorityStore  suggest.Store
	linkStore       events.LinkStore
	stats           events.Stats
	transport       transport.Transport
	membership      consortium.Membership
	logger          *zerolog.Logger
	topicPrefix     string
	partitionSize   int
	retryAttempts   int
	retryDelay      time.Duration
	searchParameter suggest.SearchParameter
	trimNaturalID   bool
}

// defaultConfig returns the baseline configuration before options apply.
func defaultConfig() *config {
	return &config{
		partitionSize:   events.DefaultPartitionSize,
		searchParameter: suggest.SearchByNaturalID,
	}
}

// WithRuleSource configures the tenant-scoped linking rule source. Required.
func WithRuleSource(source rules.Source) Option {
	return func(c *config) error {
		c.ruleSource = source
		return nil
	}
}

// WithAuthorityStore configures the authority lookup collaborator used by
// link suggestion.
func WithAuthorityStore(store suggest.Store) Option {
	return func(c *config) error {
		c.authorityStore = store
		return nil
	}
}

// WithLinkStore configures the collaborator returning an authority's
// existing bibliographic links. Required.
func WithLinkStore(store events.LinkStore) Option {
	return func(c *config) error {
		c.linkStore = store
		return nil
	}
}

// WithStats configures the bookkeeping collaborator invoked for every
// classified notification.
func WithStats(stats events.Stats) Option {
	return func(c *config) error {
		c.stats = stats
		return nil
	}
}

// WithTransport configures the message transport events are published to.
// Defaults to an in-memory channel transport.
func WithTransport(t transport.Transport) Option {
	return func(c *config) error {
		c.transport = t
		return nil
	}
}

// WithMembership configures the consortium membership lookup used by
// Propagate.
func WithMembership(m consortium.Membership) Option {
	return func(c *config) error {
		c.membership = m
		return nil
	}
}

// WithLogger configures the logger stamped onto every processing context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithTopicPrefix overrides the outbound topic prefix.
func WithTopicPrefix(prefix string) Option {
	return func(c *config) error {
		c.topicPrefix = prefix
		return nil
	}
}

// WithPartitionSize configures the maximum number of events per published
// batch.
func WithPartitionSize(size int) Option {
	return func(c *config) error {
		c.partitionSize = size
		return nil
	}
}

// WithRetryAttempts configures the publish retry ceiling.
func WithRetryAttempts(attempts int) Option {
	return func(c *config) error {
		c.retryAttempts = attempts
		return nil
	}
}

// WithRetryDelay configures the initial publish backoff delay.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *config) error {
		c.retryDelay = delay
		return nil
	}
}

// WithSearchParameter selects how suggestion candidates are matched against
// the authority store.
func WithSearchParameter(parameter suggest.SearchParameter) Option {
	return func(c *config) error {
		c.searchParameter = parameter
		return nil
	}
}

// WithNaturalIDPrefixTrim enables trimming a single leading prefix character
// from natural-id subfield values before suggestion lookup.
func WithNaturalIDPrefixTrim(enabled bool) Option {
	return func(c *config) error {
		c.trimNaturalID = enabled
		return nil
	}
}
