package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/marclink/pkg/differ"
	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/logging"
)

// quietCtx discards the retry warnings the flaky-transport tests provoke.
func quietCtx() context.Context {
	return logging.WithLogger(context.Background(), &logging.Nop)
}

func sampleBatch() []events.LinksChangeEvent {
	return []events.LinksChangeEvent{
		{
			AuthorityID: "auth-1",
			Type:        events.ChangeTypeUpdate,
			Tenant:      "diku",
			SubfieldChanges: []differ.FieldChange{
				{Field: "240", Subfields: []differ.SubfieldChange{{Code: "a", Value: "new"}}},
			},
		},
		{AuthorityID: "auth-2", Type: events.ChangeTypeDelete, Tenant: "diku", InstanceID: "inst-1"},
	}
}

func TestEmitPublishesToTenantTopic(t *testing.T) {
	channel := NewChannel()
	emitter := NewEmitter(channel)

	err := emitter.Emit(context.Background(), "diku", sampleBatch())
	require.NoError(t, err)

	msgs := channel.Messages("links.instance-authority.diku")
	require.Len(t, msgs, 2, "the whole batch lands on the tenant-qualified topic")

	assert.Equal(t, []byte("auth-1"), msgs[0].Key)
	assert.Equal(t, []byte("auth-2"), msgs[1].Key, "batch order survives publishing")
	assert.Equal(t, "diku", msgs[0].Headers[HeaderTenant])

	var decoded events.LinksChangeEvent
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &decoded))
	assert.Equal(t, events.ChangeTypeUpdate, decoded.Type)
	require.Len(t, decoded.SubfieldChanges, 1)
}

func TestEmitCustomPrefixAndTraceHeader(t *testing.T) {
	channel := NewChannel()
	emitter := NewEmitter(channel, WithTopicPrefix("authority.changes"))

	ctx := WithTraceID(context.Background(), "trace-123")
	require.NoError(t, emitter.Emit(ctx, "central", sampleBatch()[:1]))

	msgs := channel.Messages("authority.changes.central")
	require.Len(t, msgs, 1)
	assert.Equal(t, "trace-123", msgs[0].Headers[HeaderTrace])
}

func TestEmitEmptyBatchIsANoOp(t *testing.T) {
	published := 0
	emitter := NewEmitter(TransportFunc(func(context.Context, string, []Message) error {
		published++
		return nil
	}))

	require.NoError(t, emitter.Emit(context.Background(), "diku", nil))
	assert.Zero(t, published)
}

func TestEmitRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	flaky := TransportFunc(func(context.Context, string, []Message) error {
		attempts++
		if attempts < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	})

	emitter := NewEmitter(flaky, WithRetryDelay(time.Millisecond))
	err := emitter.Emit(quietCtx(), "diku", sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "transient failures are retried with backoff")
}

func TestEmitExhaustedRetriesSurfaceIntegrationFailure(t *testing.T) {
	attempts := 0
	down := TransportFunc(func(context.Context, string, []Message) error {
		attempts++
		return errors.New("broker unavailable")
	})

	emitter := NewEmitter(down, WithRetryAttempts(3), WithRetryDelay(time.Millisecond))
	err := emitter.Emit(quietCtx(), "diku", sampleBatch())

	require.Error(t, err)
	assert.True(t, errors.IsIntegration(err))
	assert.Equal(t, 3, attempts, "the attempt ceiling bounds the retry loop")
}

func TestChannelIsolatesTopics(t *testing.T) {
	channel := NewChannel()
	ctx := context.Background()

	require.NoError(t, channel.Publish(ctx, "topic.a", []Message{{Key: []byte("1")}}))
	require.NoError(t, channel.Publish(ctx, "topic.b", []Message{{Key: []byte("2")}}))
	require.NoError(t, channel.Publish(ctx, "topic.a", []Message{{Key: []byte("3")}}))

	a := channel.Messages("topic.a")
	require.Len(t, a, 2)
	assert.Equal(t, []byte("1"), a[0].Key)
	assert.Equal(t, []byte("3"), a[1].Key)
	assert.Len(t, channel.Messages("topic.b"), 1)
	assert.Len(t, channel.Topics(), 2)
}
