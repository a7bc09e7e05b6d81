package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/shortcraft-backend/internal/http/handlers"
	httpMW "github.com/yungbote/shortcraft-backend/internal/http/middleware"
	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler

	ProjectHandler  *httpH.ProjectHandler
	PipelineHandler *httpH.PipelineHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/quota", cfg.UserHandler.GetQuota)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.CreateProject)
			protected.GET("/projects", cfg.ProjectHandler.ListProjects)
			protected.GET("/projects/:id", cfg.ProjectHandler.GetProject)
			protected.GET("/projects/:id/outputs/:kind", cfg.ProjectHandler.GetOutput)
			protected.GET("/projects/:id/outputs/:kind/versions", cfg.ProjectHandler.ListVersions)
		}

		// Generation stages
		if cfg.PipelineHandler != nil {
			protected.POST("/projects/:id/hooks", cfg.PipelineHandler.GenerateHooks)
			protected.POST("/projects/:id/storyboard", cfg.PipelineHandler.GenerateStoryboard)
			protected.POST("/projects/:id/image-prompts", cfg.PipelineHandler.GenerateImagePrompts)
			protected.POST("/projects/:id/video-prompts", cfg.PipelineHandler.GenerateVideoPrompts)
			protected.POST("/projects/:id/editing-script", cfg.PipelineHandler.GenerateEditingScript)
			protected.POST("/projects/:id/translate", cfg.PipelineHandler.TranslateOutput)
			protected.POST("/projects/:id/select-hook", cfg.PipelineHandler.SelectHook)
		}
	}

	return r
}
