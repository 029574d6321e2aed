package infrastructure

import (
	"context"
	"errors"
	"sync"

	"raffler/domain/events"
)

// recordingPublisher collects published events
type recordingPublisher struct {
	mu              sync.Mutex
	publishedEvents []events.Event
	publishError    error
}

func (m *recordingPublisher) Publish(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishError != nil {
		return m.publishError
	}
	m.publishedEvents = append(m.publishedEvents, event)
	return nil
}

func (m *recordingPublisher) events() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]events.Event(nil), m.publishedEvents...)
}

// fakeBus is an in-memory MessageBus
type fakeBus struct {
	mu         sync.Mutex
	published  map[string][][]byte
	handlers   map[string]func([]byte) error
	streams    map[string][]string
	publishErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(map[string][][]byte),
		handlers:  make(map[string]func([]byte) error),
		streams:   make(map[string][]string),
	}
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published[subject] = append(b.published[subject], data)
	return nil
}

func (b *fakeBus) Subscribe(subject string, handler func([]byte) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = handler
	return nil
}

func (b *fakeBus) EnsureStream(streamName string, subjects []string, description string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[streamName] = subjects
	return nil
}

// deliver hands data to the subscriber of subject
func (b *fakeBus) deliver(subject string, data []byte) error {
	b.mu.Lock()
	handler, ok := b.handlers[subject]
	b.mu.Unlock()
	if !ok {
		return errors.New("no subscriber")
	}
	return handler(data)
}

func (b *fakeBus) messages(subject string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.published[subject]...)
}
