package bus

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/realtime"
)

func TestMemoryBusForwardsAndRecords(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.ArtifactEvent, 1)
	if err := b.StartForwarder(ctx, func(ev realtime.ArtifactEvent) { got <- ev }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	ev := realtime.ArtifactEvent{Type: realtime.EventArtifactCreated, ProjectID: uuid.New(), Kind: "hooks", Version: 1}
	if err := b.Publish(ctx, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if recv := <-got; recv.ProjectID != ev.ProjectID {
		t.Fatalf("forwarded %+v, want %+v", recv, ev)
	}
	if n := len(b.Published()); n != 1 {
		t.Fatalf("Published() len = %d", n)
	}
	if err := b.StartForwarder(ctx, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
