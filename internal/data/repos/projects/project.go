package projects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, p *types.Project) (*types.Project, error)
	// GetForOwner returns nil when the project is missing or owned by someone else.
	GetForOwner(dbc dbctx.Context, ownerUserID, projectID uuid.UUID) (*types.Project, error)
	ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID, limit int) ([]*types.Project, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, p *types.Project) (*types.Project, error) {
	if p == nil || p.OwnerUserID == uuid.Nil {
		return nil, nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Idea = strings.TrimSpace(p.Idea)
	p.Niche = strings.TrimSpace(p.Niche)
	if err := dbc.Conn(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *projectRepo) GetForOwner(dbc dbctx.Context, ownerUserID, projectID uuid.UUID) (*types.Project, error) {
	if ownerUserID == uuid.Nil || projectID == uuid.Nil {
		return nil, nil
	}
	var row types.Project
	if err := dbc.Conn(r.db).
		Where("id = ? AND owner_user_id = ?", projectID, ownerUserID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *projectRepo) ListByOwner(dbc dbctx.Context, ownerUserID uuid.UUID, limit int) ([]*types.Project, error) {
	var out []*types.Project
	if ownerUserID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	if err := dbc.Conn(r.db).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
