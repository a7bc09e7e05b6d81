package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	httpx "github.com/yungbote/shortcraft-backend/internal/http"
	httpH "github.com/yungbote/shortcraft-backend/internal/http/handlers"
	httpMW "github.com/yungbote/shortcraft-backend/internal/http/middleware"
	pipelinemod "github.com/yungbote/shortcraft-backend/internal/modules/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/resolver"
	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
	"github.com/yungbote/shortcraft-backend/internal/services"
)

type Repos struct {
	User      repos.UserRepo
	Project   repos.ProjectRepo
	Artifacts repos.ArtifactRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Project:   repos.NewProjectRepo(db, log),
		Artifacts: repos.NewArtifactRepo(db, log),
	}
}

type Services struct {
	Auth     services.AuthService
	User     services.UserService
	Project  services.ProjectService
	Pipeline pipelinemod.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) (Services, error) {
	log.Info("Wiring services...")
	limiter, err := quota.NewLimiter(cfg.Quota, r.Artifacts, log)
	if err != nil {
		return Services{}, fmt.Errorf("init quota limiter: %w", err)
	}
	return Services{
		Auth:    services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:    services.NewUserService(log, r.User),
		Project: services.NewProjectService(log, r.Project),
		Pipeline: pipelinemod.New(pipelinemod.UsecasesDeps{
			DB:             db,
			Log:            log,
			Projects:       r.Project,
			Artifacts:      r.Artifacts,
			Resolver:       resolver.New(r.Artifacts, log),
			Quota:          limiter,
			AI:             c.OpenAI,
			Events:         c.Events,
			VideoSceneCost: cfg.VideoSceneCost,
		}),
	}, nil
}

func wireRouter(db *gorm.DB, log *logger.Logger, cfg Config, s Services, metrics *observability.Metrics) *gin.Engine {
	log.Info("Wiring router...")
	otelService := ""
	if cfg.Otel.Enabled {
		otelService = cfg.Otel.ServiceName
	}
	return httpx.NewRouter(httpx.RouterConfig{
		Log:         log,
		ServiceName: otelService,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,

		HealthHandler:   httpH.NewHealthHandler(db),
		AuthHandler:     httpH.NewAuthHandler(s.Auth),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, s.Auth),
		UserHandler:     httpH.NewUserHandler(s.User, s.Pipeline),
		ProjectHandler:  httpH.NewProjectHandler(s.Project, s.Pipeline),
		PipelineHandler: httpH.NewPipelineHandler(s.User, s.Pipeline),
	})
}
