package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/shortcraft-backend/internal/realtime"
)

// MemoryBus fans events out to in-process forwarders. Used when Redis is not
// configured and in tests.
type MemoryBus struct {
	mu        sync.RWMutex
	listeners map[int]func(realtime.ArtifactEvent)
	nextID    int
	published []realtime.ArtifactEvent
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{listeners: map[int]func(realtime.ArtifactEvent){}}
}

func (b *MemoryBus) Publish(_ context.Context, ev realtime.ArtifactEvent) error {
	b.mu.Lock()
	b.published = append(b.published, ev)
	listeners := make([]func(realtime.ArtifactEvent), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.ArtifactEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}()
	return nil
}

// Published returns a copy of every event seen so far.
func (b *MemoryBus) Published() []realtime.ArtifactEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]realtime.ArtifactEvent{}, b.published...)
}

func (b *MemoryBus) Close() error { return nil }
