package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/http/response"
	pipelinemod "github.com/yungbote/shortcraft-backend/internal/modules/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/apierr"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
	pipeline       pipelinemod.Usecases
}

func NewProjectHandler(projectService services.ProjectService, pipeline pipelinemod.Usecases) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, pipeline: pipeline}
}

// POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondDomainError(c, apierr.BadRequest("INVALID_REQUEST", err))
		return
	}
	p, err := h.projectService.Create(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": p})
}

// GET /projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	list, err := h.projectService.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": list})
}

// GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := projectParam(c)
	if !ok {
		return
	}
	p, err := h.projectService.Get(dbctx.Context{Ctx: c.Request.Context()}, projectID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// GET /projects/:id/outputs/:kind?language=
func (h *ProjectHandler) GetOutput(c *gin.Context) {
	projectID, kind, ok := outputParams(c)
	if !ok {
		return
	}
	a, err := h.pipeline.LatestOutput(c.Request.Context(), ctxutil.UserID(c.Request.Context()), projectID, c.Query("language"), kind)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if a == nil {
		response.RespondDomainError(c, pipeline.NotFound("latest_output", string(kind)))
		return
	}
	response.RespondOK(c, gin.H{"artifact": a})
}

// GET /projects/:id/outputs/:kind/versions?language=
func (h *ProjectHandler) ListVersions(c *gin.Context) {
	projectID, kind, ok := outputParams(c)
	if !ok {
		return
	}
	list, err := h.pipeline.Versions(c.Request.Context(), ctxutil.UserID(c.Request.Context()), projectID, c.Query("language"), kind)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": list})
}

func projectParam(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, apierr.BadRequest("INVALID_PROJECT_ID", err))
		return uuid.Nil, false
	}
	return projectID, true
}

func outputParams(c *gin.Context) (uuid.UUID, pipeline.StageKind, bool) {
	projectID, ok := projectParam(c)
	if !ok {
		return uuid.Nil, "", false
	}
	kind, ok := pipeline.ParseStageKind(c.Param("kind"))
	if !ok {
		response.RespondDomainError(c, pipeline.Validation("output", "unknown output kind"))
		return uuid.Nil, "", false
	}
	return projectID, kind, true
}
