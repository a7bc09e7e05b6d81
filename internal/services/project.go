package services

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

const (
	maxTitleRunes = 200
	maxIdeaRunes  = 4000
)

type CreateProjectInput struct {
	Title string `json:"title"`
	Idea  string `json:"idea"`
	Niche string `json:"niche"`
}

// ProjectService scopes every read to the caller attached by the auth
// middleware.
type ProjectService interface {
	Create(dbc dbctx.Context, in CreateProjectInput) (*types.Project, error)
	List(dbc dbctx.Context) ([]*types.Project, error)
	Get(dbc dbctx.Context, projectID uuid.UUID) (*types.Project, error)
}

type projectService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
}

func NewProjectService(log *logger.Logger, projects repos.ProjectRepo) ProjectService {
	return &projectService{log: log.With("service", "ProjectService"), projects: projects}
}

func (ps *projectService) Create(dbc dbctx.Context, in CreateProjectInput) (*types.Project, error) {
	const op = "project.create"
	owner := ctxutil.UserID(dbc.Ctx)
	if owner == uuid.Nil {
		return nil, pipeline.Unauthorized(op)
	}
	title := strings.TrimSpace(in.Title)
	idea := strings.TrimSpace(in.Idea)
	if idea == "" {
		return nil, pipeline.Validation(op, "idea is required")
	}
	if title == "" {
		title = firstLine(idea, 80)
	}
	if utf8.RuneCountInString(title) > maxTitleRunes || utf8.RuneCountInString(idea) > maxIdeaRunes {
		return nil, pipeline.Validation(op, "title or idea too long")
	}
	p, err := ps.projects.Create(dbc, &types.Project{
		OwnerUserID: owner,
		Title:       title,
		Idea:        idea,
		Niche:       in.Niche,
	})
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	ps.log.Info("project created", "project_id", p.ID.String(), "user_id", owner.String())
	return p, nil
}

func (ps *projectService) List(dbc dbctx.Context) ([]*types.Project, error) {
	owner := ctxutil.UserID(dbc.Ctx)
	if owner == uuid.Nil {
		return nil, pipeline.Unauthorized("project.list")
	}
	out, err := ps.projects.ListByOwner(dbc, owner, 0)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, "project.list", err)
	}
	return out, nil
}

func (ps *projectService) Get(dbc dbctx.Context, projectID uuid.UUID) (*types.Project, error) {
	const op = "project.get"
	owner := ctxutil.UserID(dbc.Ctx)
	if owner == uuid.Nil {
		return nil, pipeline.Unauthorized(op)
	}
	p, err := ps.projects.GetForOwner(dbc, owner, projectID)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	if p == nil {
		return nil, pipeline.NotFound(op, "project")
	}
	return p, nil
}

func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
	}
	return s
}
