package quota

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/data/repos/artifacts"
	"github.com/yungbote/shortcraft-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

type fakeCounter struct {
	created []time.Time
	calls   int
}

func (f *fakeCounter) CountCreatedSince(_ dbctx.Context, _ uuid.UUID, _ []types.StageKind, since time.Time) (int64, error) {
	f.calls++
	var n int64
	for _, t := range f.created {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func toronto(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func tightConfig() Config {
	cfg := DefaultConfig()
	cfg.Plans[PlanFree] = pipeline.QuotaLimits{PerDay: 1, PerWeek: 3}
	return cfg
}

func TestCheckRejectsAtDailyCeilingAndAllowsAfterRollover(t *testing.T) {
	loc := toronto(t)
	clk := &clock{now: time.Date(2026, 10, 14, 15, 0, 0, 0, loc)}
	counter := &fakeCounter{created: []time.Time{time.Date(2026, 10, 14, 9, 0, 0, 0, loc).UTC()}}

	lim, err := NewLimiter(tightConfig(), counter, logger.Nop(), WithClock(clk.Now))
	require.NoError(t, err)

	acct := Account{UserID: uuid.New(), Email: "owner@example.com"}
	dbc := dbctx.New(context.Background())

	_, err = lim.Check(dbc, acct, pipeline.StageEditingScript)
	require.Error(t, err)
	pe, ok := pipeline.AsError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.CodeQuotaExceeded, pe.Code)
	require.NotNil(t, pe.Quota)
	assert.Equal(t, PlanFree, pe.Quota.Plan)
	assert.Equal(t, pipeline.QuotaLimits{PerDay: 1, PerWeek: 3}, pe.Quota.Limits)
	assert.Equal(t, pipeline.QuotaUsage{Today: 1, Week: 1}, pe.Quota.Usage)
	assert.Equal(t, pipeline.QuotaUsage{Today: 0, Week: 2}, pe.Quota.Remaining)

	clk.now = time.Date(2026, 10, 15, 0, 30, 0, 0, loc)
	st, err := lim.Check(dbc, acct, pipeline.StageEditingScript)
	require.NoError(t, err)
	assert.Equal(t, pipeline.QuotaUsage{Today: 0, Week: 1}, st.Usage)
}

func TestCheckRejectsAtWeeklyCeiling(t *testing.T) {
	loc := toronto(t)
	clk := &clock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, loc)} // Friday
	counter := &fakeCounter{created: []time.Time{
		time.Date(2026, 10, 12, 8, 0, 0, 0, loc), // Monday
		time.Date(2026, 10, 13, 8, 0, 0, 0, loc),
		time.Date(2026, 10, 14, 8, 0, 0, 0, loc),
		time.Date(2026, 10, 11, 23, 0, 0, 0, loc), // previous week
	}}
	lim, err := NewLimiter(tightConfig(), counter, logger.Nop(), WithClock(clk.Now))
	require.NoError(t, err)

	_, err = lim.Check(dbctx.New(context.Background()), Account{UserID: uuid.New()}, pipeline.StageEditingScript)
	require.True(t, pipeline.IsCode(err, pipeline.CodeQuotaExceeded))

	clk.now = time.Date(2026, 10, 19, 0, 0, 0, 0, loc) // next Monday
	_, err = lim.Check(dbctx.New(context.Background()), Account{UserID: uuid.New()}, pipeline.StageEditingScript)
	require.NoError(t, err)
}

func TestCheckSkipsUngatedStagesAndBypassAccounts(t *testing.T) {
	counter := &fakeCounter{}
	cfg := tightConfig()
	cfg.Plans[PlanFree] = pipeline.QuotaLimits{PerDay: 0, PerWeek: 0}
	cfg.AdminEmails = []string{"Admin@Example.com"}
	lim, err := NewLimiter(cfg, counter, logger.Nop())
	require.NoError(t, err)
	dbc := dbctx.New(context.Background())

	_, err = lim.Check(dbc, Account{UserID: uuid.New()}, pipeline.StageHooks)
	require.NoError(t, err)
	assert.Zero(t, counter.calls)

	st, err := lim.Check(dbc, Account{UserID: uuid.New(), Email: " admin@example.com"}, pipeline.StageEditingScript)
	require.NoError(t, err)
	assert.True(t, st.Bypass)
	assert.Zero(t, counter.calls)

	_, err = lim.Check(dbc, Account{UserID: uuid.New(), Email: "someone@example.com"}, pipeline.StageEditingScript)
	require.True(t, pipeline.IsCode(err, pipeline.CodeQuotaExceeded))

	cfg.Disabled = true
	off, err := NewLimiter(cfg, counter, logger.Nop())
	require.NoError(t, err)
	_, err = off.Check(dbc, Account{UserID: uuid.New()}, pipeline.StageEditingScript)
	require.NoError(t, err)
}

func TestUnlimitedTierNeverRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plans[PlanAgency] = pipeline.QuotaLimits{PerDay: -1, PerWeek: -1}
	counter := &fakeCounter{}
	for i := 0; i < 40; i++ {
		counter.created = append(counter.created, time.Now().Add(-time.Minute))
	}
	lim, err := NewLimiter(cfg, counter, logger.Nop())
	require.NoError(t, err)

	st, err := lim.Check(dbctx.New(context.Background()), Account{UserID: uuid.New(), Plan: "agency"}, pipeline.StageEditingScript)
	require.NoError(t, err)
	assert.Equal(t, PlanAgency, st.Plan)
	assert.Equal(t, pipeline.QuotaUsage{Today: -1, Week: -1}, st.Remaining)
}

func TestResolvePlanOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlanEmails = map[string][]string{"pro": {"vip@example.com"}}
	lim, err := NewLimiter(cfg, &fakeCounter{}, logger.Nop())
	require.NoError(t, err)

	plan, limits, bypass := lim.ResolvePlan(Account{Email: "VIP@example.com", Plan: PlanStarter})
	assert.Equal(t, PlanPro, plan)
	assert.Equal(t, 15, limits.PerDay)
	assert.False(t, bypass)

	plan, _, _ = lim.ResolvePlan(Account{Plan: "starter"})
	assert.Equal(t, PlanStarter, plan)

	plan, _, _ = lim.ResolvePlan(Account{Plan: "ENTERPRISE"})
	assert.Equal(t, PlanFree, plan)
}

func TestWindowsFollowReferenceTimezoneAcrossDST(t *testing.T) {
	loc := toronto(t)
	lim, err := NewLimiter(DefaultConfig(), &fakeCounter{}, logger.Nop())
	require.NoError(t, err)

	// Sunday after the fall-back transition; the week began on Monday under EDT.
	day, week := lim.Windows(time.Date(2026, 11, 1, 12, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 11, 1, 4, 0, 0, 0, time.UTC), day)
	assert.Equal(t, time.Date(2026, 10, 26, 4, 0, 0, 0, time.UTC), week)

	// Monday under EST: day and week start coincide.
	day, week = lim.Windows(time.Date(2026, 11, 2, 12, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 11, 2, 5, 0, 0, 0, time.UTC), day)
	assert.Equal(t, day, week)

	// 02:00 UTC Tuesday is still Monday evening in Toronto.
	day, _ = lim.Windows(time.Date(2026, 11, 3, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 11, 2, 5, 0, 0, 0, time.UTC), day)
}

func TestNewLimiterRejectsUnknownTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	_, err := NewLimiter(cfg, &fakeCounter{}, logger.Nop())
	require.Error(t, err)
}

func TestNewLimiterRejectsEmailUnderTwoPlans(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PlanEmails = map[string][]string{
		PlanPro:    {"owner@clinic.example"},
		PlanAgency: {" Owner@Clinic.example "},
	}
	_, err := NewLimiter(cfg, &fakeCounter{}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner@clinic.example")

	cfg.PlanEmails = map[string][]string{PlanPro: {"owner@clinic.example", "OWNER@clinic.example"}}
	l, err := NewLimiter(cfg, &fakeCounter{}, logger.Nop())
	require.NoError(t, err)
	plan, _, _ := l.ResolvePlan(Account{Email: "owner@clinic.example"})
	assert.Equal(t, PlanPro, plan)
}

func TestCheckAgainstArtifactStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := artifacts.NewArtifactRepo(db, log)

	owner := testutil.SeedUser(t, ctx, db, "")
	proj := testutil.SeedProject(t, ctx, db, owner.ID, "dentist outreach")
	other := testutil.SeedProject(t, ctx, db, uuid.New(), "not mine")

	lim, err := NewLimiter(tightConfig(), repo, log)
	require.NoError(t, err)
	acct := Account{UserID: owner.ID, Email: owner.Email}
	dbc := dbctx.Context{Ctx: ctx}

	_, err = repo.Create(dbc, other.ID, "en", pipeline.StageEditingScript, []byte(`{"timeline":[]}`))
	require.NoError(t, err)
	_, err = repo.Create(dbc, proj.ID, "en", pipeline.StageHooks, []byte(`["a"]`))
	require.NoError(t, err)

	_, err = lim.Check(dbc, acct, pipeline.StageEditingScript)
	require.NoError(t, err)

	_, err = repo.Create(dbc, proj.ID, "fr", pipeline.StageEditingScript, []byte(`{"timeline":[]}`))
	require.NoError(t, err)

	_, err = lim.Check(dbc, acct, pipeline.StageEditingScript)
	require.True(t, pipeline.IsCode(err, pipeline.CodeQuotaExceeded))
}

func TestLoadFileYAMLAndTOML(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "plans.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(`
timezone: Europe/Paris
default_plan: starter
plans:
  starter:
    per_day: 7
    per_week: 30
admin_emails: [root@example.com]
plan_emails:
  pro: [vip@example.com]
gated_stages: [editing-script, video_prompts]
`), 0o644))

	cfg, err := LoadFile(yml, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.Equal(t, PlanStarter, cfg.DefaultPlan)
	assert.Equal(t, pipeline.QuotaLimits{PerDay: 7, PerWeek: 30}, cfg.Plans[PlanStarter])
	assert.Equal(t, pipeline.QuotaLimits{PerDay: 2, PerWeek: 5}, cfg.Plans[PlanFree])
	assert.Equal(t, []string{"root@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"vip@example.com"}, cfg.PlanEmails[PlanPro])
	assert.Equal(t, []pipeline.StageKind{pipeline.StageEditingScript, pipeline.StageVideoPrompts}, cfg.GatedStages)

	tml := filepath.Join(dir, "plans.toml")
	require.NoError(t, os.WriteFile(tml, []byte(`
disabled = true

[plans.AGENCY]
per_day = -1
per_week = -1
`), 0o644))

	cfg, err = LoadFile(tml, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, cfg.Disabled)
	assert.Equal(t, pipeline.QuotaLimits{PerDay: -1, PerWeek: -1}, cfg.Plans[PlanAgency])

	bad := filepath.Join(dir, "plans.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("plan_emails:\n  gold: [a@example.com]\n"), 0o644))
	_, err = LoadFile(bad, DefaultConfig())
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "plans.json"), DefaultConfig())
	require.Error(t, err)
}
