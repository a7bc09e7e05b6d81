package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("QUOTA_PLANS_FILE", "")

	cfg, err := LoadConfig(logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecretKey)
	assert.Equal(t, 3, cfg.VideoSceneCost)
	assert.Equal(t, quota.PlanFree, cfg.Quota.DefaultPlan)
	assert.Equal(t, []pipeline.StageKind{pipeline.StageEditingScript}, cfg.Quota.GatedStages)
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig(logger.Nop())
	assert.Error(t, err)
}

func TestQuotaEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_plan: starter
plans:
  starter: {per_day: 7, per_week: 30}
plan_emails:
  pro: [vip@clinic.test]
`), 0o600))

	t.Setenv("QUOTA_PLANS_FILE", path)
	t.Setenv("QUOTA_STARTER_PER_DAY", "9")
	t.Setenv("QUOTA_ADMIN_EMAILS", "ops@clinic.test, ")
	t.Setenv("QUOTA_GATED_STAGES", "editing-script,hooks")

	cfg, err := loadQuotaConfig()
	require.NoError(t, err)
	assert.Equal(t, quota.PlanStarter, cfg.DefaultPlan)
	assert.Equal(t, pipeline.QuotaLimits{PerDay: 9, PerWeek: 30}, cfg.Plans[quota.PlanStarter])
	assert.Equal(t, []string{"vip@clinic.test"}, cfg.PlanEmails[quota.PlanPro])
	assert.Equal(t, []string{"ops@clinic.test"}, cfg.AdminEmails)
	assert.Equal(t, []pipeline.StageKind{pipeline.StageEditingScript, pipeline.StageHooks}, cfg.GatedStages)
}

func TestQuotaUnknownGatedStageFails(t *testing.T) {
	t.Setenv("QUOTA_PLANS_FILE", "")
	t.Setenv("QUOTA_GATED_STAGES", "podcast")
	_, err := loadQuotaConfig()
	assert.Error(t, err)
}
