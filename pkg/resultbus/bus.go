// Package resultbus delivers asynchronous payment results to the API
// instance that owns the kiosk session.
package resultbus

import (
	"context"
	"sync"
)

// Channel is the redis pub/sub channel used by RedisBus
const Channel = "kiosk:payment-results"

// Result is a payment outcome reported by the terminal integration
type Result struct {
	ClientReference   string `json:"client_reference"`
	TransactionStatus string `json:"transaction_status"`
	Reason            string `json:"reason,omitempty"`
}

// Handler receives published results
type Handler func(Result)

// Bus publishes payment results to every subscriber
type Bus interface {
	Publish(ctx context.Context, r Result) error
	Subscribe(ctx context.Context, h Handler) (cancel func(), err error)
}

// MemoryBus is an in-process Bus for single-instance deployments and tests
type MemoryBus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

var _ Bus = (*MemoryBus)(nil)

// NewMemoryBus creates an empty in-process bus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[int]Handler)}
}

// Publish calls every subscriber synchronously
func (b *MemoryBus) Publish(_ context.Context, r Result) error {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(r)
	}
	return nil
}

// Subscribe registers h until cancel is called
func (b *MemoryBus) Subscribe(_ context.Context, h Handler) (func(), error) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}
