package pipeline

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Artifact is one persisted, versioned stage output. Rows are append-only.
type Artifact struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_project_output_version,priority:1;index:idx_project_output_kind,priority:1" json:"project_id"`
	Language  string         `gorm:"column:language;not null;uniqueIndex:idx_project_output_version,priority:2" json:"language"`
	Kind      StageKind      `gorm:"column:kind;not null;uniqueIndex:idx_project_output_version,priority:3;index:idx_project_output_kind,priority:2" json:"kind"`
	Version   int            `gorm:"column:version;not null;uniqueIndex:idx_project_output_version,priority:4" json:"version"`
	Content   datatypes.JSON `gorm:"column:content;not null" json:"content"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Artifact) TableName() string { return "project_output" }
