package bus

import (
	"context"

	"github.com/yungbote/shortcraft-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.ArtifactEvent) error
	// StartForwarder delivers every published event to onEvent until ctx ends.
	StartForwarder(ctx context.Context, onEvent func(ev realtime.ArtifactEvent)) error
	Close() error
}
