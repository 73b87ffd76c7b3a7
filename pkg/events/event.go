// Package events classifies inbound authority-change notifications, runs the
// change diff for linked updates, and groups the resulting change events
// into bounded batches for emission.
package events

import (
	"github.com/agentstation/marclink/pkg/differ"
	"github.com/agentstation/marclink/pkg/marc"
)

// NotificationType is the type of an inbound authority-change notification.
type NotificationType string

// Inbound notification types. Only UPDATE and DELETE survive
// classification; the rest are dropped.
const (
	NotificationCreate  NotificationType = "CREATE"
	NotificationUpdate  NotificationType = "UPDATE"
	NotificationDelete  NotificationType = "DELETE"
	NotificationReindex NotificationType = "REINDEX"
	NotificationIterate NotificationType = "ITERATE"
)

// Notification is one inbound authority-change notification: the record's
// identifier, the change type, and the old and new authority snapshots where
// the type provides them.
type Notification struct {
	ID   string           `json:"id"`
	Type NotificationType `json:"type"`
	Old  *marc.Authority  `json:"old,omitempty"`
	New  *marc.Authority  `json:"new,omitempty"`
}

// AuthorityID returns the authority identifier the notification concerns,
// falling back through the snapshots when the envelope omits it.
func (n Notification) AuthorityID() string {
	if n.ID != "" {
		return n.ID
	}
	if n.New != nil && n.New.ID != "" {
		return n.New.ID
	}
	if n.Old != nil {
		return n.Old.ID
	}
	return ""
}

// ChangeType is the type of an outbound links-change event.
type ChangeType string

// Outbound change types.
const (
	ChangeTypeUpdate ChangeType = "UPDATE"
	ChangeTypeDelete ChangeType = "DELETE"
)

// InstanceLink identifies one existing link between a bibliographic instance
// record and an authority.
type InstanceLink struct {
	ID         int    `json:"id,omitempty"`
	InstanceID string `json:"instanceId"`
	BibField   string `json:"bibField,omitempty"`
}

// LinksChangeEvent is the outbound notification handed to the emission
// pipeline. For UPDATE events SubfieldChanges carries the ordered per-field
// deltas and NaturalID the record's new natural identifier when it changed;
// DELETE events carry the affected instance instead. Once handed off the
// engine holds no further reference.
type LinksChangeEvent struct {
	JobID           string               `json:"jobId,omitempty"`
	AuthorityID     string               `json:"authorityId"`
	Type            ChangeType           `json:"type"`
	Tenant          string               `json:"tenant"`
	InstanceID      string               `json:"instanceId,omitempty"`
	NaturalID       string               `json:"naturalId,omitempty"`
	SubfieldChanges []differ.FieldChange `json:"subfieldChanges,omitempty"`
	Ts              int64                `json:"ts"`
}
