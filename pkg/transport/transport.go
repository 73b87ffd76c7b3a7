// Package transport provides the event emission pipeline: a pluggable
// message transport abstraction and an emitter that attaches tenant routing
// and publishes change batches with bounded-backoff retry. At-least-once
// delivery is the contract; deduplication, if any, belongs to the transport.
package transport

import (
	"context"
	"sync"
)

// Message is one serialized record handed to the transport.
type Message struct {
	Key     []byte
	Payload []byte
	Headers map[string]string
}

// Transport publishes an ordered message batch to a topic. Implementations
// must preserve the batch's order within the call; no ordering is guaranteed
// across calls.
type Transport interface {
	Publish(ctx context.Context, topic string, msgs []Message) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, topic string, msgs []Message) error

// Publish implements Transport.
func (f TransportFunc) Publish(ctx context.Context, topic string, msgs []Message) error {
	return f(ctx, topic, msgs)
}

// Channel is an in-memory Transport that records everything published to it,
// per topic and in publish order. It backs tests and the CLI's dry runs.
type Channel struct {
	mu     sync.Mutex
	topics map[string][]Message
}

// NewChannel creates an empty in-memory transport.
func NewChannel() *Channel {
	return &Channel{topics: make(map[string][]Message)}
}

// Publish implements Transport.
func (c *Channel) Publish(_ context.Context, topic string, msgs []Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = append(c.topics[topic], msgs...)
	return nil
}

// Messages returns everything published to the topic, in order.
func (c *Channel) Messages(topic string) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.topics[topic]))
	copy(out, c.topics[topic])
	return out
}

// Topics returns the topics that have received at least one message.
func (c *Channel) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for topic := range c.topics {
		out = append(out, topic)
	}
	return out
}
