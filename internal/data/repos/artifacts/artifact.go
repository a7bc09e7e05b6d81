package artifacts

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/data/aggregates"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

const defaultMaxCreateAttempts = 8

type ArtifactRepo interface {
	// Create appends the next version for (project, language, kind).
	Create(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind, content []byte) (*types.Artifact, error)
	Latest(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (*types.Artifact, error)
	LatestAny(dbc dbctx.Context, projectID uuid.UUID, kind types.StageKind) (*types.Artifact, error)
	Exists(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (bool, error)
	NextVersion(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (int, error)
	ListVersions(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind, limit int) ([]*types.Artifact, error)
	CountCreatedSince(dbc dbctx.Context, ownerUserID uuid.UUID, kinds []types.StageKind, since time.Time) (int64, error)
}

type Option func(*artifactRepo)

// WithClock overrides the timestamp source for created rows.
func WithClock(now func() time.Time) Option {
	return func(r *artifactRepo) {
		if now != nil {
			r.now = now
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(r *artifactRepo) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

type artifactRepo struct {
	db          *gorm.DB
	log         *logger.Logger
	now         func() time.Time
	maxAttempts int
}

func NewArtifactRepo(db *gorm.DB, baseLog *logger.Logger, opts ...Option) ArtifactRepo {
	r := &artifactRepo{
		db:          db,
		log:         baseLog.With("repo", "ArtifactRepo"),
		now:         time.Now,
		maxAttempts: defaultMaxCreateAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *artifactRepo) Create(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind, content []byte) (*types.Artifact, error) {
	const op = "artifacts.create"
	language = strings.TrimSpace(language)
	if projectID == uuid.Nil || language == "" || !kind.Valid() {
		return nil, pipeline.Validation(op, "project, language and a known stage kind are required")
	}
	if !json.Valid(content) {
		return nil, pipeline.Validation(op, "content is not valid JSON")
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		row, err := r.createOnce(dbc, projectID, language, kind, content)
		if err == nil {
			return row, nil
		}
		if !aggregates.IsUniqueViolation(err) {
			return nil, aggregates.MapError(op, err)
		}
		lastErr = err
		observability.Current().IncVersionRetry(string(kind))
		r.log.Warn("artifact version taken, retrying",
			"project_id", projectID,
			"language", language,
			"kind", kind,
			"attempt", attempt,
		)
	}
	return nil, aggregates.MapError(op, lastErr)
}

// createOnce runs read-max then insert in its own transaction, or in a
// savepoint when the caller already holds one.
func (r *artifactRepo) createOnce(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind, content []byte) (*types.Artifact, error) {
	var created *types.Artifact
	err := dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		maxVersion, err := maxVersion(tx, projectID, language, kind)
		if err != nil {
			return err
		}
		now := r.now().UTC()
		row := &types.Artifact{
			ID:        uuid.New(),
			ProjectID: projectID,
			Language:  language,
			Kind:      kind,
			Version:   maxVersion + 1,
			Content:   datatypes.JSON(content),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// maxVersion includes soft-deleted rows so versions are never reused.
func maxVersion(tx *gorm.DB, projectID uuid.UUID, language string, kind types.StageKind) (int, error) {
	var v int
	row := tx.Unscoped().
		Model(&types.Artifact{}).
		Select("COALESCE(MAX(version), 0)").
		Where("project_id = ? AND language = ? AND kind = ?", projectID, language, string(kind)).
		Row()
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func (r *artifactRepo) Latest(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (*types.Artifact, error) {
	if projectID == uuid.Nil || strings.TrimSpace(language) == "" {
		return nil, nil
	}
	var row types.Artifact
	if err := dbc.Conn(r.db).
		Where("project_id = ? AND language = ? AND kind = ?", projectID, strings.TrimSpace(language), string(kind)).
		Order("version DESC").
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *artifactRepo) LatestAny(dbc dbctx.Context, projectID uuid.UUID, kind types.StageKind) (*types.Artifact, error) {
	if projectID == uuid.Nil {
		return nil, nil
	}
	var row types.Artifact
	if err := dbc.Conn(r.db).
		Where("project_id = ? AND kind = ?", projectID, string(kind)).
		Order("created_at DESC").
		Order("version DESC").
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *artifactRepo) Exists(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (bool, error) {
	row, err := r.Latest(dbc, projectID, language, kind)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (r *artifactRepo) NextVersion(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (int, error) {
	v, err := maxVersion(dbc.Conn(r.db), projectID, strings.TrimSpace(language), kind)
	if err != nil {
		return 0, err
	}
	return v + 1, nil
}

func (r *artifactRepo) ListVersions(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind, limit int) ([]*types.Artifact, error) {
	var out []*types.Artifact
	if projectID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if err := dbc.Conn(r.db).
		Where("project_id = ? AND language = ? AND kind = ?", projectID, strings.TrimSpace(language), string(kind)).
		Order("version DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountCreatedSince counts rows of the given kinds across every project the
// owner has, deleted rows included.
func (r *artifactRepo) CountCreatedSince(dbc dbctx.Context, ownerUserID uuid.UUID, kinds []types.StageKind, since time.Time) (int64, error) {
	if ownerUserID == uuid.Nil || len(kinds) == 0 {
		return 0, nil
	}
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	var n int64
	if err := dbc.Conn(r.db).
		Unscoped().
		Model(&types.Artifact{}).
		Joins("JOIN project ON project.id = project_output.project_id").
		Where("project.owner_user_id = ?", ownerUserID).
		Where("project_output.kind IN ?", names).
		Where("project_output.created_at >= ?", since.UTC()).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
