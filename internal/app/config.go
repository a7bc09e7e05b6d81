package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/shortcraft-backend/internal/data/db"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/placement"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/envutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
	"github.com/yungbote/shortcraft-backend/internal/platform/openai"
	"github.com/yungbote/shortcraft-backend/internal/realtime/bus"
)

const serviceName = "shortcraft-backend"

// Config is read once at startup. Nothing below the app package reads the
// environment afterwards.
type Config struct {
	Env     string
	LogMode string
	Port    string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB     db.Config
	OpenAI openai.Config
	Redis  bus.RedisConfig
	Quota  quota.Config

	VideoSceneCost  int
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	Otel    observability.OtelConfig
	Metrics observability.MetricsConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	env := envutil.String("APP_ENV", "development")
	cfg := Config{
		Env:     env,
		LogMode: envutil.String("LOG_MODE", "development"),
		Port:    envutil.String("PORT", "8080"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),

		DB:     dbConfigFromEnv(),
		OpenAI: openai.ConfigFromEnv(stageNames()),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel),
		},

		VideoSceneCost:  envutil.Int("VIDEO_SCENE_COST", placement.DefaultVideoSceneCost),
		CORSOrigins:     envutil.CSV("CORS_ORIGINS"),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),

		Otel: observability.OtelConfigFromEnv(serviceName, env, envutil.String("APP_VERSION", "dev")),
		Metrics: observability.MetricsConfig{
			Enabled:        envutil.Bool("METRICS_ENABLED", false),
			Addr:           envutil.String("METRICS_ADDR", ":9090"),
			ScrapeInterval: envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15*time.Second),
		},
	}

	if cfg.JWTSecretKey == "" {
		if strings.EqualFold(env, "production") {
			return cfg, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		log.Warn("JWT_SECRET_KEY not set; using an insecure development secret")
		cfg.JWTSecretKey = "dev-only-secret"
	}

	qc, err := loadQuotaConfig()
	if err != nil {
		return cfg, err
	}
	cfg.Quota = qc
	return cfg, nil
}

func dbConfigFromEnv() db.Config {
	driver := strings.ToLower(envutil.String("DB_DRIVER", "postgres"))
	dsn := envutil.String("DATABASE_URL", "")
	if dsn == "" && driver == "postgres" {
		dsn = db.PostgresDSN(
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.String("POSTGRES_PORT", "5432"),
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", "postgres"),
			envutil.String("POSTGRES_NAME", "shortcraft"),
		)
	}
	return db.Config{
		Driver:       driver,
		DSN:          dsn,
		MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20),
		LogLevel:     envutil.String("DB_LOG_LEVEL", "warn"),
	}
}

// loadQuotaConfig layers defaults, the optional QUOTA_PLANS_FILE, then the
// QUOTA_* variables.
func loadQuotaConfig() (quota.Config, error) {
	cfg := quota.DefaultConfig()
	if path := envutil.String("QUOTA_PLANS_FILE", ""); path != "" {
		loaded, err := quota.LoadFile(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg.Disabled = envutil.Bool("QUOTA_DISABLED", cfg.Disabled)
	cfg.Timezone = envutil.String("QUOTA_TIMEZONE", cfg.Timezone)
	if p := envutil.String("QUOTA_DEFAULT_PLAN", ""); p != "" {
		cfg.DefaultPlan = strings.ToUpper(p)
	}
	cfg.AdminEmails = append(cfg.AdminEmails, envutil.CSV("QUOTA_ADMIN_EMAILS")...)
	for plan, limits := range cfg.Plans {
		limits.PerDay = envutil.Int("QUOTA_"+plan+"_PER_DAY", limits.PerDay)
		limits.PerWeek = envutil.Int("QUOTA_"+plan+"_PER_WEEK", limits.PerWeek)
		cfg.Plans[plan] = limits
		if emails := envutil.CSV("QUOTA_" + plan + "_EMAILS"); len(emails) > 0 {
			cfg.PlanEmails[plan] = append(cfg.PlanEmails[plan], emails...)
		}
	}
	if names := envutil.CSV("QUOTA_GATED_STAGES"); len(names) > 0 {
		stages, err := quota.ParseStages(names)
		if err != nil {
			return cfg, err
		}
		cfg.GatedStages = stages
	}
	return cfg, cfg.Validate()
}

func stageNames() []string {
	all := pipeline.AllStages()
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, string(s))
	}
	return out
}
