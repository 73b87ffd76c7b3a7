package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/agentstation/marclink/pkg/errors"
	"github.com/agentstation/marclink/pkg/events"
	"github.com/agentstation/marclink/pkg/logging"
)

// DefaultTopicPrefix is the conventional prefix of the tenant-qualified
// links-change topic.
const DefaultTopicPrefix = "links.instance-authority"

// Retry defaults for a transport-level send failure.
const (
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = 250 * time.Millisecond
	DefaultRetryMaxDelay = 5 * time.Second
)

// Header names attached to every published message.
const (
	HeaderTenant = "x-okapi-tenant"
	HeaderTrace  = "x-trace-id"
)

// Emitter serializes change batches, attaches tenant routing, and publishes
// them with retry-until-ceiling semantics. Emission is the only blocking
// network boundary of the engine and runs off any latency-sensitive dispatch
// path.
type Emitter struct {
	transport Transport
	prefix    string
	attempts  int
	delay     time.Duration
	maxDelay  time.Duration
	clock     clock.Clock
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithTopicPrefix overrides the topic prefix.
func WithTopicPrefix(prefix string) EmitterOption {
	return func(e *Emitter) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithRetryAttempts sets the retry attempt ceiling for a failed publish.
func WithRetryAttempts(attempts int) EmitterOption {
	return func(e *Emitter) {
		if attempts > 0 {
			e.attempts = attempts
		}
	}
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(delay time.Duration) EmitterOption {
	return func(e *Emitter) {
		if delay > 0 {
			e.delay = delay
		}
	}
}

// WithClock overrides the retry clock, letting tests run backoff without
// real waiting.
func WithClock(c clock.Clock) EmitterOption {
	return func(e *Emitter) {
		e.clock = c
	}
}

// NewEmitter creates an Emitter over the given transport.
func NewEmitter(t Transport, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		transport: t,
		prefix:    DefaultTopicPrefix,
		attempts:  DefaultRetryAttempts,
		delay:     DefaultRetryDelay,
		maxDelay:  DefaultRetryMaxDelay,
		clock:     clock.WallClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Topic returns the tenant-qualified topic name.
func (e *Emitter) Topic(tenant string) string {
	return e.prefix + "." + tenant
}

// Emit serializes the batch, keys each message by authority identifier, and
// publishes to the tenant's topic. The whole batch is published in one call,
// preserving batch order. A transport failure is retried with exponential
// backoff up to the attempt ceiling, after which the batch surfaces as an
// integration failure; previously emitted batches are unaffected.
func (e *Emitter) Emit(ctx context.Context, tenant string, batch []events.LinksChangeEvent) error {
	if len(batch) == 0 {
		return nil
	}

	log := logging.Ctx(ctx)
	topic := e.Topic(tenant)

	msgs := make([]Message, 0, len(batch))
	for _, event := range batch {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.NewValidationError("event", event.AuthorityID, err.Error())
		}
		headers := map[string]string{HeaderTenant: tenant}
		if trace := traceID(ctx); trace != "" {
			headers[HeaderTrace] = trace
		}
		msgs = append(msgs, Message{
			Key:     []byte(event.AuthorityID),
			Payload: payload,
			Headers: headers,
		})
	}

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return e.transport.Publish(ctx, topic, msgs)
		},
		NotifyFunc: func(lastError error, attempt int) {
			log.Warn().
				Err(lastError).
				Str("topic", topic).
				Int("attempt", attempt).
				Msg("Publish failed, backing off")
		},
		Attempts:    e.attempts,
		Delay:       e.delay,
		MaxDelay:    e.maxDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       e.clock,
		Stop:        ctx.Done(),
	})
	if err != nil {
		cause := retry.LastError(err)
		log.Error().
			Err(cause).
			Str("topic", topic).
			Int("events", len(batch)).
			Msg("Publish retries exhausted, dropping batch")
		return errors.NewIntegrationError("transport", topic, e.attempts, cause)
	}

	log.Debug().
		Str("topic", topic).
		Int("events", len(batch)).
		Msg("Published change batch")
	return nil
}

// traceIDKey is the context key for a propagated trace identifier.
type traceIDKey struct{}

// WithTraceID stamps the context with a trace identifier propagated as a
// message header on every publish.
func WithTraceID(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, trace)
}

// traceID extracts the propagated trace identifier, or the empty string.
func traceID(ctx context.Context) string {
	if trace, ok := ctx.Value(traceIDKey{}).(string); ok {
		return trace
	}
	return ""
}
