package infrastructure

import "context"

// MessageBus is the subset of NATSClient the randomness transport needs
type MessageBus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler func([]byte) error) error
	EnsureStream(streamName string, subjects []string, description string) error
}

var _ MessageBus = (*NATSClient)(nil)
