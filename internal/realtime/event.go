package realtime

import (
	"time"

	"github.com/google/uuid"
)

const EventArtifactCreated = "artifact.created"

// ArtifactEvent announces a newly persisted stage output.
type ArtifactEvent struct {
	Type        string    `json:"type"`
	ArtifactID  uuid.UUID `json:"artifactId"`
	ProjectID   uuid.UUID `json:"projectId"`
	OwnerUserID uuid.UUID `json:"ownerUserId"`
	Language    string    `json:"language"`
	Kind        string    `json:"kind"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	RequestID   string    `json:"requestId,omitempty"`
}
