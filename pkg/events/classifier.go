package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/marclink/pkg/differ"
	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/logging"
	"github.com/agentstation/marclink/pkg/rules"
)

// LinkStore is the read collaborator returning an authority's existing
// bibliographic links.
type LinkStore interface {
	ByAuthority(ctx context.Context, tenant, authorityID string) ([]InstanceLink, error)
}

// Stats is the bookkeeping collaborator. It is invoked for every
// notification that survives classification, including authorities with zero
// links (which produce no event).
type Stats interface {
	RecordChange(ctx context.Context, tenant, authorityID string, changeType ChangeType, links int)
}

// NopStats discards all bookkeeping.
type NopStats struct{}

// RecordChange implements Stats.
func (NopStats) RecordChange(context.Context, string, string, ChangeType, int) {}

// Result summarizes one classification run. Dropped notifications never
// disappear silently; they are counted here and logged as they occur.
type Result struct {
	Events    []LinksChangeEvent
	Skipped   int // non-UPDATE/DELETE types and no-op updates
	NoLinks   int // classified notifications with zero existing links
	Malformed int // notifications excluded for bad content
}

// Classifier partitions inbound notifications by type, short-circuits no-op
// updates, consults the link store, and runs the change diff for linked
// updates. A malformed notification is recorded and excluded without
// aborting the remaining notifications of the same invocation; a link store
// outage is an integration failure and aborts, so the consumption
// collaborator can redeliver instead of losing the change.
type Classifier struct {
	cache  *rules.Cache
	differ differ.Differ
	links  LinkStore
	stats  Stats
}

// NewClassifier creates a Classifier over the given collaborators. A nil
// stats falls back to NopStats.
func NewClassifier(cache *rules.Cache, d differ.Differ, links LinkStore, stats Stats) *Classifier {
	if stats == nil {
		stats = NopStats{}
	}
	return &Classifier{cache: cache, differ: d, links: links, stats: stats}
}

// Classify processes one inbound notification sequence for a tenant and
// returns the change events to emit, in notification order. The tenant's
// rule table snapshot is resolved once per invocation.
func (c *Classifier) Classify(ctx context.Context, tenant string, notifications []Notification) (*Result, error) {
	log := logging.Ctx(ctx)

	table, err := c.cache.Table(ctx, tenant)
	if err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	result := &Result{}
	for _, n := range notifications {
		switch n.Type {
		case NotificationUpdate:
			if err := c.classifyUpdate(ctx, tenant, jobID, n, table, result); err != nil {
				return nil, err
			}
		case NotificationDelete:
			if err := c.classifyDelete(ctx, tenant, jobID, n, result); err != nil {
				return nil, err
			}
		default:
			result.Skipped++
			log.Debug().
				Str("authority_id", n.AuthorityID()).
				Str("type", string(n.Type)).
				Msg("Dropping notification of unhandled type")
		}
	}
	return result, nil
}

// classifyUpdate runs an UPDATE notification through the no-op check, the
// link count check, and the diff engine.
func (c *Classifier) classifyUpdate(ctx context.Context, tenant, jobID string, n Notification, table *rules.Table, result *Result) error {
	log := logging.Ctx(ctx)
	authorityID := n.AuthorityID()

	if n.New == nil {
		c.drop(ctx, result, &errors.RecordError{AuthorityID: authorityID, Reason: "update without new content"})
		return nil
	}
	if n.Old != nil && n.Old.Equal(n.New) {
		// Nothing worth sending for a no-op update.
		result.Skipped++
		log.Debug().Str("authority_id", authorityID).Msg("Dropping no-op update")
		return nil
	}

	links, err := c.links.ByAuthority(ctx, tenant, authorityID)
	if err != nil {
		return errors.NewIntegrationError("link-store", "", 1, err)
	}
	if len(links) == 0 {
		result.NoLinks++
		c.stats.RecordChange(ctx, tenant, authorityID, ChangeTypeUpdate, 0)
		return nil
	}

	changes, err := c.differ.Changes(n.Old, n.New, table)
	if err != nil {
		c.drop(ctx, result, &errors.RecordError{AuthorityID: authorityID, Reason: "diff failed", Err: err})
		return nil
	}

	event := LinksChangeEvent{
		JobID:           jobID,
		AuthorityID:     authorityID,
		Type:            ChangeTypeUpdate,
		Tenant:          tenant,
		SubfieldChanges: changes,
		Ts:              time.Now().UnixMilli(),
	}
	if n.Old != nil && n.Old.NaturalID != n.New.NaturalID {
		event.NaturalID = n.New.NaturalID
	}
	result.Events = append(result.Events, event)
	c.stats.RecordChange(ctx, tenant, authorityID, ChangeTypeUpdate, len(links))
	return nil
}

// classifyDelete fans a DELETE notification out to one event per existing
// link, so every linked instance is told to unlink.
func (c *Classifier) classifyDelete(ctx context.Context, tenant, jobID string, n Notification, result *Result) error {
	authorityID := n.AuthorityID()

	links, err := c.links.ByAuthority(ctx, tenant, authorityID)
	if err != nil {
		return errors.NewIntegrationError("link-store", "", 1, err)
	}
	if len(links) == 0 {
		result.NoLinks++
		c.stats.RecordChange(ctx, tenant, authorityID, ChangeTypeDelete, 0)
		return nil
	}

	ts := time.Now().UnixMilli()
	for _, link := range links {
		result.Events = append(result.Events, LinksChangeEvent{
			JobID:       jobID,
			AuthorityID: authorityID,
			Type:        ChangeTypeDelete,
			Tenant:      tenant,
			InstanceID:  link.InstanceID,
			Ts:          ts,
		})
	}
	c.stats.RecordChange(ctx, tenant, authorityID, ChangeTypeDelete, len(links))
	return nil
}

// drop records and logs an excluded notification.
func (c *Classifier) drop(ctx context.Context, result *Result, recordErr *errors.RecordError) {
	result.Malformed++
	logging.Ctx(ctx).Warn().
		Str("authority_id", recordErr.AuthorityID).
		Err(recordErr).
		Msg("Excluding malformed notification from batch")
}
