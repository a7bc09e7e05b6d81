package quota

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

const (
	PlanFree    = "FREE"
	PlanStarter = "STARTER"
	PlanPro     = "PRO"
	PlanAgency  = "AGENCY"

	DefaultTimezone = "America/Toronto"
)

// Config is resolved once at startup and handed to NewLimiter.
type Config struct {
	// Disabled is the global kill switch: every account bypasses limiting.
	Disabled    bool
	Timezone    string
	DefaultPlan string
	Plans       map[string]pipeline.QuotaLimits
	AdminEmails []string
	// PlanEmails pins accounts to a tier by email.
	PlanEmails  map[string][]string
	GatedStages []pipeline.StageKind
}

func DefaultConfig() Config {
	return Config{
		Timezone:    DefaultTimezone,
		DefaultPlan: PlanFree,
		Plans: map[string]pipeline.QuotaLimits{
			PlanFree:    {PerDay: 2, PerWeek: 5},
			PlanStarter: {PerDay: 5, PerWeek: 20},
			PlanPro:     {PerDay: 15, PerWeek: 75},
			PlanAgency:  {PerDay: 50, PerWeek: 250},
		},
		PlanEmails:  map[string][]string{},
		GatedStages: []pipeline.StageKind{pipeline.StageEditingScript},
	}
}

// fileConfig is the on-disk shape shared by the YAML and TOML loaders.
type fileConfig struct {
	Disabled    *bool                           `yaml:"disabled" toml:"disabled"`
	Timezone    string                          `yaml:"timezone" toml:"timezone"`
	DefaultPlan string                          `yaml:"default_plan" toml:"default_plan"`
	Plans       map[string]pipeline.QuotaLimits `yaml:"plans" toml:"plans"`
	AdminEmails []string                        `yaml:"admin_emails" toml:"admin_emails"`
	PlanEmails  map[string][]string             `yaml:"plan_emails" toml:"plan_emails"`
	GatedStages []string                        `yaml:"gated_stages" toml:"gated_stages"`
}

// LoadFile overlays a .yaml/.yml or .toml plan file onto base.
func LoadFile(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read quota file: %w", err)
	}
	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return base, fmt.Errorf("parse quota yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), &fc); err != nil {
			return base, fmt.Errorf("parse quota toml: %w", err)
		}
	default:
		return base, fmt.Errorf("unsupported quota file extension %q", filepath.Ext(path))
	}
	return fc.apply(base)
}

func (fc fileConfig) apply(cfg Config) (Config, error) {
	cfg = cfg.clone()
	if fc.Disabled != nil {
		cfg.Disabled = *fc.Disabled
	}
	if tz := strings.TrimSpace(fc.Timezone); tz != "" {
		cfg.Timezone = tz
	}
	if p := strings.TrimSpace(fc.DefaultPlan); p != "" {
		cfg.DefaultPlan = normalizePlan(p)
	}
	for name, limits := range fc.Plans {
		cfg.Plans[normalizePlan(name)] = limits
	}
	cfg.AdminEmails = append(cfg.AdminEmails, fc.AdminEmails...)
	for name, emails := range fc.PlanEmails {
		key := normalizePlan(name)
		cfg.PlanEmails[key] = append(cfg.PlanEmails[key], emails...)
	}
	if len(fc.GatedStages) > 0 {
		stages, err := ParseStages(fc.GatedStages)
		if err != nil {
			return cfg, err
		}
		cfg.GatedStages = stages
	}
	return cfg, cfg.Validate()
}

func ParseStages(names []string) ([]pipeline.StageKind, error) {
	out := make([]pipeline.StageKind, 0, len(names))
	for _, n := range names {
		k, ok := pipeline.ParseStageKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown gated stage %q", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func (c Config) Validate() error {
	if _, ok := c.Plans[normalizePlan(c.DefaultPlan)]; !ok {
		return fmt.Errorf("default plan %q has no limits", c.DefaultPlan)
	}
	for name := range c.PlanEmails {
		if _, ok := c.Plans[normalizePlan(name)]; !ok {
			return fmt.Errorf("plan_emails references unknown plan %q", name)
		}
	}
	owner := map[string]string{}
	for name, emails := range c.PlanEmails {
		plan := normalizePlan(name)
		for _, e := range emails {
			e = normalizeEmail(e)
			if e == "" {
				continue
			}
			if prev, ok := owner[e]; ok && prev != plan {
				return fmt.Errorf("plan_emails lists %q under both %q and %q", e, prev, plan)
			}
			owner[e] = plan
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Plans = make(map[string]pipeline.QuotaLimits, len(c.Plans))
	for k, v := range c.Plans {
		out.Plans[normalizePlan(k)] = v
	}
	out.PlanEmails = make(map[string][]string, len(c.PlanEmails))
	for k, v := range c.PlanEmails {
		out.PlanEmails[normalizePlan(k)] = append([]string{}, v...)
	}
	out.AdminEmails = append([]string{}, c.AdminEmails...)
	out.GatedStages = append([]pipeline.StageKind{}, c.GatedStages...)
	return out
}

func normalizePlan(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
