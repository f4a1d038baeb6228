// Package broker carries job reports between the runner and whatever
// consumes them: the TUI in the same process, or the report agent and the
// MCP server through Redpanda.
package broker

import "context"

// Broker publishes and consumes keyed messages.
type Broker interface {
	// Publish sends value to topic. Redpanda partitions on key; the
	// in-memory broker keeps it only for consumers to read.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel of messages on topic. The channel is
	// closed when ctx is done or the broker is closed. groupID names the
	// Redpanda consumer group and is ignored in memory.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	Close() error
}

// Message is one consumed record.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64 // unix millis
}
