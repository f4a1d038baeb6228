package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"

	"jobdoctor/src/logger"
)

const (
	clientID          = "jobdoctor"
	publishMaxElapsed = 15 * time.Second
	consumerBuffer    = 100
)

func newPublishBackoff() backoff.BackOff {
	// BackOff values are stateful; build a fresh one per publish.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = publishMaxElapsed
	return bo
}

// RedpandaBroker publishes and consumes through a Kafka-compatible
// cluster using franz-go. Job reports are keyed by run ID, so the reports
// of one run stay on one partition and in order.
//
// Consumers commit offsets only after a record has been handed to the
// subscriber, so a report agent that dies mid-batch sees the rest again.
type RedpandaBroker struct {
	producer *kgo.Client
	brokers  []string
	log      logger.Logger

	mu        sync.Mutex
	consumers map[string]*kgo.Client // topic:group -> consumer
	closed    bool
}

// NewRedpandaBroker connects a producer to the seed brokers
// (e.g. ["localhost:19092"]).
func NewRedpandaBroker(brokers []string) (*RedpandaBroker, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	producer, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.ZstdCompression(), kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &RedpandaBroker{
		producer:  producer,
		brokers:   brokers,
		log:       logger.NewConsoleLogger(),
		consumers: make(map[string]*kgo.Client),
	}, nil
}

// SetLogger replaces the logger used for fetch errors and publish retries.
func (b *RedpandaBroker) SetLogger(l logger.Logger) {
	b.log = l
}

func (b *RedpandaBroker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Publish produces value to topic under key and waits for the ack.
// Failed produces are retried with exponential backoff until ctx is done.
func (b *RedpandaBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	if b.isClosed() {
		return ErrClosed
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := b.producer.ProduceSync(ctx, record).FirstErr()
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return backoff.Permanent(err)
		}
		b.log.Debug("[RedpandaBroker] Produce attempt %d to %s failed: %v", attempt, topic, err)
		return err
	}, backoff.WithContext(newPublishBackoff(), ctx))
	if err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins groupID on topic, starting from the earliest
// uncommitted record. One subscription per topic and group at a time;
// the slot is released when ctx is done.
func (b *RedpandaBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	key := topic + ":" + groupID
	if _, exists := b.consumers[key]; exists {
		return nil, fmt.Errorf("consumer already exists for topic %s and group %s", topic, groupID)
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AutoCommitMarks(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.consumers[key] = consumer

	msgs := make(chan Message, consumerBuffer)
	go func() {
		defer b.release(key, consumer)
		b.consumeLoop(ctx, consumer, msgs)
	}()
	return msgs, nil
}

func (b *RedpandaBroker) release(key string, consumer *kgo.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consumers[key] == consumer {
		delete(b.consumers, key)
		consumer.Close()
	}
}

// consumeLoop polls until ctx is done or the client closes, then closes msgs.
func (b *RedpandaBroker) consumeLoop(ctx context.Context, consumer *kgo.Client, msgs chan<- Message) {
	defer close(msgs)

	for ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if ctx.Err() == nil {
				b.log.Error("[RedpandaBroker] Fetch error on %s/%d: %v", topic, partition, err)
			}
		})

		delivered := true
		fetches.EachRecord(func(record *kgo.Record) {
			if !delivered {
				return
			}
			select {
			case msgs <- toMessage(record):
				consumer.MarkCommitRecords(record)
			case <-ctx.Done():
				delivered = false
			}
		})

		// The subscription may be done; commit what was delivered anyway.
		if err := consumer.CommitMarkedOffsets(context.WithoutCancel(ctx)); err != nil {
			b.log.Error("[RedpandaBroker] Commit failed: %v", err)
		}
	}
}

func toMessage(record *kgo.Record) Message {
	return Message{
		Topic:     record.Topic,
		Key:       string(record.Key),
		Value:     record.Value,
		Offset:    record.Offset,
		Partition: record.Partition,
		Timestamp: record.Timestamp.UnixMilli(),
	}
}

// Close shuts down the producer and every consumer. Open subscriptions
// close their channels.
func (b *RedpandaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for key, consumer := range b.consumers {
		consumer.Close()
		delete(b.consumers, key)
	}
	b.producer.Close()
	return nil
}
