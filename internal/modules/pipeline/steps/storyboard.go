package steps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/normalize"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
)

const (
	maxStoryboardScenes = 10
	maxSceneNumber      = 20
)

var errNoScenes = errors.New("no valid storyboard scenes")

type StoryboardInput struct {
	StageInput
}

type StoryboardOutput struct {
	StageOutput
	Scenes []types.StoryboardScene `json:"scenes,omitempty"`
}

// GenerateStoryboard builds the scene list from the project idea and the
// primary hook: the selected hook for the language when one exists, else the
// first generated hook.
func GenerateStoryboard(ctx context.Context, deps StageDeps, in StoryboardInput) (StoryboardOutput, error) {
	const op = "generate_storyboard"
	var scenes []types.StoryboardScene
	out, err := traced(ctx, types.StageStoryboard, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		run, err := begin(ctx, deps, in.StageInput, op, types.StageStoryboard, beginOptions{skipIfExists: true})
		if err != nil {
			return StageOutput{}, err
		}
		if run == nil {
			return StageOutput{Skipped: true}, nil
		}

		hook, err := primaryHook(deps, run)
		if err != nil {
			return StageOutput{}, err
		}

		raw, err := run.generate(ctx, deps, prompts.PromptStoryboard, prompts.Input{
			Title:       run.project.Title,
			Idea:        firstNonEmpty(run.project.Idea, run.project.Title),
			Niche:       run.project.Niche,
			Language:    prompts.LanguageName(run.language),
			PrimaryHook: hook,
		})
		if err != nil {
			return StageOutput{}, err
		}
		scenes, err = NormalizeStoryboard(op, raw)
		if err != nil {
			run.log.Warn("storyboard output rejected", "error", err)
			return StageOutput{}, err
		}

		art, err := run.persist(ctx, deps, types.StageStoryboard, run.language, scenes)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return StoryboardOutput{StageOutput: out, Scenes: scenes}, err
}

func primaryHook(deps StageDeps, run *stageRun) (string, error) {
	sel, err := deps.Artifacts.Latest(run.dbc, run.project.ID, run.language, types.StageSelectedHook)
	if err != nil {
		return "", pipeline.Wrap(pipeline.CodeInternal, run.op, err)
	}
	if sel != nil {
		var picked types.SelectedHook
		if json.Unmarshal(sel.Content, &picked) == nil && strings.TrimSpace(picked.Hook) != "" {
			return strings.TrimSpace(picked.Hook), nil
		}
	}

	var hooks []string
	if a := run.deps[types.StageHooks]; a != nil {
		if err := json.Unmarshal(a.Content, &hooks); err != nil {
			run.log.Debug("hooks artifact is not a string list", "version", a.Version, "error", err)
		}
	}
	for _, h := range hooks {
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", pipeline.MissingDependency(run.op, types.StageHooks)
}

// NormalizeStoryboard keeps scenes numbered 1..20 with trimmed text, at most
// ten of them.
func NormalizeStoryboard(op, raw string) ([]types.StoryboardScene, error) {
	items, err := normalize.List(op, raw, normalize.SceneListKeys...)
	if err != nil {
		return nil, err
	}
	scenes := make([]types.StoryboardScene, 0, len(items))
	for _, s := range normalize.DecodeItems[types.StoryboardScene](items) {
		if s.Scene < 1 || s.Scene > maxSceneNumber {
			continue
		}
		s.OnScreenText = strings.TrimSpace(s.OnScreenText)
		s.Voiceover = strings.TrimSpace(s.Voiceover)
		s.Visual = strings.TrimSpace(s.Visual)
		scenes = append(scenes, s)
		if len(scenes) == maxStoryboardScenes {
			break
		}
	}
	if len(scenes) == 0 {
		return nil, pipeline.MalformedOutput(op, raw, errNoScenes)
	}
	return scenes, nil
}
