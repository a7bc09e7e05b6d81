package steps

import (
	"context"
	"errors"
	"strings"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/normalize"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
)

const maxHooks = 10

var errNoHooks = errors.New("no non-empty hooks")

type HooksInput struct {
	StageInput
}

type HooksOutput struct {
	StageOutput
	Hooks []string `json:"hooks,omitempty"`
}

// GenerateHooks writes the hooks list for a project variant. An existing
// hooks artifact for the same language short-circuits with Skipped.
func GenerateHooks(ctx context.Context, deps StageDeps, in HooksInput) (HooksOutput, error) {
	const op = "generate_hooks"
	var hooks []string
	out, err := traced(ctx, types.StageHooks, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		run, err := begin(ctx, deps, in.StageInput, op, types.StageHooks, beginOptions{skipIfExists: true})
		if err != nil {
			return StageOutput{}, err
		}
		if run == nil {
			return StageOutput{Skipped: true}, nil
		}

		raw, err := run.generate(ctx, deps, prompts.PromptHooks, prompts.Input{
			Title:    run.project.Title,
			Idea:     firstNonEmpty(run.project.Idea, run.project.Title),
			Niche:    run.project.Niche,
			Language: prompts.LanguageName(run.language),
		})
		if err != nil {
			return StageOutput{}, err
		}
		hooks, err = NormalizeHooks(op, raw)
		if err != nil {
			run.log.Warn("hooks output rejected", "error", err)
			return StageOutput{}, err
		}

		art, err := run.persist(ctx, deps, types.StageHooks, run.language, hooks)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return HooksOutput{StageOutput: out, Hooks: hooks}, err
}

// NormalizeHooks accepts a string list, drops blanks and keeps at most ten.
func NormalizeHooks(op, raw string) ([]string, error) {
	items, err := normalize.Strings(op, raw, normalize.StringListKeys...)
	if err != nil {
		return nil, err
	}
	hooks := make([]string, 0, len(items))
	for _, h := range items {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		hooks = append(hooks, h)
		if len(hooks) == maxHooks {
			break
		}
	}
	if len(hooks) == 0 {
		return nil, pipeline.MalformedOutput(op, raw, errNoHooks)
	}
	return hooks, nil
}
