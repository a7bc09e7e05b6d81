package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, plan string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Password: "pw",
		Plan:     plan,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, idea string) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:          uuid.New(),
		OwnerUserID: ownerID,
		Title:       idea,
		Idea:        idea,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

// SeedArtifact inserts a row directly, bypassing version allocation.
func SeedArtifact(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, lang string, kind types.StageKind, version int, content string, createdAt time.Time) *types.Artifact {
	tb.Helper()
	a := &types.Artifact{
		ID:        uuid.New(),
		ProjectID: projectID,
		Language:  lang,
		Kind:      kind,
		Version:   version,
		Content:   datatypes.JSON([]byte(content)),
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed artifact: %v", err)
	}
	return a
}
