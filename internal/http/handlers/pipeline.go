package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/http/response"
	pipelinemod "github.com/yungbote/shortcraft-backend/internal/modules/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/apierr"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/services"
)

// PipelineHandler exposes the generation stages. Hooks and storyboard answer
// 200 with skipped=true when the output already exists; the other stages
// always write a new version.
type PipelineHandler struct {
	userService services.UserService
	pipeline    pipelinemod.Usecases
}

func NewPipelineHandler(userService services.UserService, pipeline pipelinemod.Usecases) *PipelineHandler {
	return &PipelineHandler{userService: userService, pipeline: pipeline}
}

type stageRequest struct {
	Language string `json:"language"`
}

type imagePromptsRequest struct {
	Language  string `json:"language"`
	Style     string `json:"style"`
	Character string `json:"character"`
}

type videoPromptsRequest struct {
	Language string `json:"language"`
	Platform string `json:"platform"`
	Style    string `json:"style"`
	Duration string `json:"duration"`
	Tool     string `json:"tool"`
}

type editingScriptRequest struct {
	Language       string `json:"language"`
	Mode           string `json:"mode"`
	ProductionMode string `json:"productionMode"`
	MaxVideoScenes int    `json:"maxVideoScenes"`
	VideoSceneCost *int   `json:"videoSceneCost"`
}

type translateRequest struct {
	Kind           string `json:"kind"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type selectHookRequest struct {
	Hook     string `json:"hook"`
	Language string `json:"language"`
}

// stageInput binds the optional body and resolves the caller. It writes the
// error response itself and returns false on failure.
func (h *PipelineHandler) stageInput(c *gin.Context, body any, language func() string) (pipelinemod.StageInput, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, apierr.BadRequest("INVALID_PROJECT_ID", err))
		return pipelinemod.StageInput{}, false
	}
	if err := c.ShouldBindJSON(body); err != nil && !errors.Is(err, io.EOF) {
		response.RespondDomainError(c, apierr.BadRequest("INVALID_REQUEST", err))
		return pipelinemod.StageInput{}, false
	}
	acct, err := h.userService.Account(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return pipelinemod.StageInput{}, false
	}
	return pipelinemod.StageInput{Account: acct, ProjectID: projectID, Language: language()}, true
}

// POST /projects/:id/hooks
func (h *PipelineHandler) GenerateHooks(c *gin.Context) {
	var req stageRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.GenerateHooks(c.Request.Context(), pipelinemod.HooksInput{StageInput: in})
	respondStage(c, out, err)
}

// POST /projects/:id/storyboard
func (h *PipelineHandler) GenerateStoryboard(c *gin.Context) {
	var req stageRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.GenerateStoryboard(c.Request.Context(), pipelinemod.StoryboardInput{StageInput: in})
	respondStage(c, out, err)
}

// POST /projects/:id/image-prompts
func (h *PipelineHandler) GenerateImagePrompts(c *gin.Context) {
	var req imagePromptsRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.GenerateImagePrompts(c.Request.Context(), pipelinemod.ImagePromptsInput{
		StageInput: in,
		Style:      req.Style,
		Character:  req.Character,
	})
	respondStage(c, out, err)
}

// POST /projects/:id/video-prompts
func (h *PipelineHandler) GenerateVideoPrompts(c *gin.Context) {
	var req videoPromptsRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.GenerateVideoPrompts(c.Request.Context(), pipelinemod.VideoPromptsInput{
		StageInput: in,
		Platform:   req.Platform,
		Style:      req.Style,
		Duration:   req.Duration,
		Tool:       req.Tool,
	})
	respondStage(c, out, err)
}

// POST /projects/:id/editing-script
func (h *PipelineHandler) GenerateEditingScript(c *gin.Context) {
	var req editingScriptRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.GenerateEditingScript(c.Request.Context(), pipelinemod.EditingScriptInput{
		StageInput:     in,
		Mode:           req.Mode,
		ProductionMode: req.ProductionMode,
		MaxVideoScenes: req.MaxVideoScenes,
		VideoSceneCost: req.VideoSceneCost,
	})
	respondStage(c, out, err)
}

// POST /projects/:id/translate
func (h *PipelineHandler) TranslateOutput(c *gin.Context) {
	var req translateRequest
	in, ok := h.stageInput(c, &req, func() string { return req.TargetLanguage })
	if !ok {
		return
	}
	out, err := h.pipeline.TranslateOutput(c.Request.Context(), pipelinemod.TranslateInput{
		StageInput:     in,
		Kind:           req.Kind,
		SourceLanguage: req.SourceLanguage,
	})
	respondStage(c, out, err)
}

// POST /projects/:id/select-hook
func (h *PipelineHandler) SelectHook(c *gin.Context) {
	var req selectHookRequest
	in, ok := h.stageInput(c, &req, func() string { return req.Language })
	if !ok {
		return
	}
	out, err := h.pipeline.SelectHook(c.Request.Context(), pipelinemod.SelectHookInput{StageInput: in, Hook: req.Hook})
	respondStage(c, out, err)
}

func respondStage(c *gin.Context, out any, err error) {
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}
