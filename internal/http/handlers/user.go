package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/shortcraft-backend/internal/http/response"
	pipelinemod "github.com/yungbote/shortcraft-backend/internal/modules/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
	pipeline    pipelinemod.Usecases
}

func NewUserHandler(userService services.UserService, pipeline pipelinemod.Usecases) *UserHandler {
	return &UserHandler{userService: userService, pipeline: pipeline}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /quota
func (uh *UserHandler) GetQuota(c *gin.Context) {
	acct, err := uh.userService.Account(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	st, err := uh.pipeline.QuotaStatus(c.Request.Context(), acct)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quota": st})
}
