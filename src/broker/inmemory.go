package broker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when using a broker after Close.
var ErrClosed = errors.New("broker is closed")

const subscriberBuffer = 100

type subscriber struct {
	ch   chan Message
	gone chan struct{}
}

// InMemoryBroker fans every published message out to all current
// subscribers of its topic. Consumer groups are ignored. Used in local
// mode and to stream reports into the TUI.
type InMemoryBroker struct {
	mu      sync.RWMutex
	subs    map[string][]*subscriber
	offsets map[string]int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subs:    make(map[string][]*subscriber),
		offsets: make(map[string]int64),
		done:    make(chan struct{}),
	}
}

// Publish delivers value to every subscriber of topic. It blocks while a
// subscriber's buffer is full, until ctx is done or the broker closes.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	if b.closed() {
		b.mu.Unlock()
		return ErrClosed
	}
	offset := b.offsets[topic]
	b.offsets[topic]++
	b.mu.Unlock()

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    offset,
		Timestamp: time.Now().UnixMilli(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
		case <-s.gone:
		case <-b.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe returns a channel of messages published to topic from now on.
// The channel closes when ctx is done or the broker closes.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed() {
		return nil, ErrClosed
	}

	s := &subscriber{
		ch:   make(chan Message, subscriberBuffer),
		gone: make(chan struct{}),
	}
	b.subs[topic] = append(b.subs[topic], s)

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		close(s.gone)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.remove(topic, s) {
			close(s.ch)
		}
	}()

	return s.ch, nil
}

// remove drops s from topic. Caller holds the write lock.
func (b *InMemoryBroker) remove(topic string, s *subscriber) bool {
	list := b.subs[topic]
	for i, cur := range list {
		if cur == s {
			b.subs[topic] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Close closes every subscriber channel. Further calls are no-ops.
func (b *InMemoryBroker) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		defer b.mu.Unlock()
		for topic, list := range b.subs {
			for _, s := range list {
				close(s.ch)
			}
			delete(b.subs, topic)
		}
	})
	return nil
}

func (b *InMemoryBroker) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
