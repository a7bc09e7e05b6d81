// Package quota bounds how many costly generations an account may trigger
// per day and per week. Usage is derived from stored artifacts; the limiter
// keeps no counters of its own.
package quota

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

// UsageCounter counts gated artifacts an owner created at or after since.
type UsageCounter interface {
	CountCreatedSince(dbc dbctx.Context, ownerUserID uuid.UUID, kinds []types.StageKind, since time.Time) (int64, error)
}

type Account struct {
	UserID uuid.UUID
	Email  string
	Plan   string
}

type Status struct {
	Plan      string               `json:"plan"`
	Bypass    bool                 `json:"bypass"`
	Limits    pipeline.QuotaLimits `json:"limits"`
	Usage     pipeline.QuotaUsage  `json:"usage"`
	Remaining pipeline.QuotaUsage  `json:"remaining"`
	DayStart  time.Time            `json:"dayStart"`
	WeekStart time.Time            `json:"weekStart"`
}

func (s Status) Details() pipeline.QuotaDetails {
	return pipeline.QuotaDetails{
		Plan:      s.Plan,
		Limits:    s.Limits,
		Usage:     s.Usage,
		Remaining: s.Remaining,
	}
}

// Exceeded reports whether either window has reached its ceiling.
func (s Status) Exceeded() bool {
	if s.Bypass {
		return false
	}
	return reached(s.Usage.Today, s.Limits.PerDay) || reached(s.Usage.Week, s.Limits.PerWeek)
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

type Limiter struct {
	cfg     Config
	loc     *time.Location
	counter UsageCounter
	log     *logger.Logger
	now     func() time.Time

	admins     map[string]bool
	emailPlans map[string]string
	gated      map[types.StageKind]bool
}

func NewLimiter(cfg Config, counter UsageCounter, baseLog *logger.Logger, opts ...Option) (*Limiter, error) {
	if counter == nil {
		return nil, fmt.Errorf("quota: nil usage counter")
	}
	cfg = cfg.clone()
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.DefaultPlan == "" {
		cfg.DefaultPlan = PlanFree
	}
	cfg.DefaultPlan = normalizePlan(cfg.DefaultPlan)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("quota: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("quota: load timezone %q: %w", cfg.Timezone, err)
	}

	l := &Limiter{
		cfg:        cfg,
		loc:        loc,
		counter:    counter,
		log:        baseLog.With("service", "QuotaLimiter"),
		now:        time.Now,
		admins:     map[string]bool{},
		emailPlans: map[string]string{},
		gated:      map[types.StageKind]bool{},
	}
	for _, e := range cfg.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			l.admins[e] = true
		}
	}
	for plan, emails := range cfg.PlanEmails {
		for _, e := range emails {
			if e = normalizeEmail(e); e != "" {
				l.emailPlans[e] = plan
			}
		}
	}
	for _, k := range cfg.GatedStages {
		l.gated[k] = true
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Gates(stage types.StageKind) bool {
	return l.gated[stage]
}

func (l *Limiter) GatedStages() []types.StageKind {
	return append([]types.StageKind{}, l.cfg.GatedStages...)
}

// ResolvePlan picks the account's tier. bypass is true for admins and when
// the kill switch is on.
func (l *Limiter) ResolvePlan(acct Account) (plan string, limits pipeline.QuotaLimits, bypass bool) {
	email := normalizeEmail(acct.Email)
	plan = l.cfg.DefaultPlan
	if p, ok := l.emailPlans[email]; ok {
		plan = p
	} else if p := normalizePlan(acct.Plan); p != "" {
		if _, known := l.cfg.Plans[p]; known {
			plan = p
		}
	}
	limits = l.cfg.Plans[plan]
	bypass = l.cfg.Disabled || (email != "" && l.admins[email])
	return plan, limits, bypass
}

// Windows returns the day and week starts in the reference timezone as
// absolute instants. Weeks start Monday.
func (l *Limiter) Windows(now time.Time) (dayStart, weekStart time.Time) {
	local := now.In(l.loc)
	y, m, d := local.Date()
	dayStart = time.Date(y, m, d, 0, 0, 0, 0, l.loc)
	sinceMonday := (int(local.Weekday()) + 6) % 7
	weekStart = time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, l.loc)
	return dayStart.UTC(), weekStart.UTC()
}

func (l *Limiter) Status(dbc dbctx.Context, acct Account) (Status, error) {
	plan, limits, bypass := l.ResolvePlan(acct)
	dayStart, weekStart := l.Windows(l.now())
	st := Status{
		Plan:      plan,
		Bypass:    bypass,
		Limits:    limits,
		DayStart:  dayStart,
		WeekStart: weekStart,
	}
	if len(l.cfg.GatedStages) == 0 {
		st.Remaining = remaining(st.Usage, limits)
		return st, nil
	}
	today, err := l.counter.CountCreatedSince(dbc, acct.UserID, l.cfg.GatedStages, dayStart)
	if err != nil {
		return st, pipeline.Wrap(pipeline.CodeInternal, "quota.status", err)
	}
	week, err := l.counter.CountCreatedSince(dbc, acct.UserID, l.cfg.GatedStages, weekStart)
	if err != nil {
		return st, pipeline.Wrap(pipeline.CodeInternal, "quota.status", err)
	}
	st.Usage = pipeline.QuotaUsage{Today: int(today), Week: int(week)}
	st.Remaining = remaining(st.Usage, limits)
	return st, nil
}

// Check allows non-gated stages outright. For gated stages it rejects with
// QuotaExceeded once either window's count reaches its ceiling.
func (l *Limiter) Check(dbc dbctx.Context, acct Account, stage types.StageKind) (Status, error) {
	if !l.Gates(stage) {
		return Status{}, nil
	}
	if _, _, bypass := l.ResolvePlan(acct); bypass {
		return Status{Bypass: true}, nil
	}
	st, err := l.Status(dbc, acct)
	if err != nil {
		return st, err
	}
	if st.Exceeded() {
		l.log.Info("quota exceeded",
			"user_id", acct.UserID,
			"plan", st.Plan,
			"today", st.Usage.Today,
			"week", st.Usage.Week,
		)
		return st, pipeline.QuotaExceeded("quota.check", st.Details())
	}
	return st, nil
}

func reached(used, limit int) bool {
	return limit >= 0 && used >= limit
}

// remaining reports -1 for unlimited windows.
func remaining(u pipeline.QuotaUsage, lim pipeline.QuotaLimits) pipeline.QuotaUsage {
	return pipeline.QuotaUsage{Today: left(u.Today, lim.PerDay), Week: left(u.Week, lim.PerWeek)}
}

func left(used, limit int) int {
	if limit < 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
