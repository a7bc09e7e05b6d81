package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/normalize"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
)

var errNoVideoPrompts = errors.New("no video prompts with a GENERIC variant")

type VideoPromptsInput struct {
	StageInput
	Platform string
	Style    string
	Duration string
	Tool     string
}

type VideoPromptsOutput struct {
	StageOutput
	Prompts *types.VideoPrompts `json:"prompts,omitempty"`
}

// ResolveVideoPresets maps free-form preset values onto the canonical sets.
func ResolveVideoPresets(platform, style, duration, tool string) types.VideoPresets {
	key, _, _ := prompts.ParseDuration(firstNonEmpty(duration, prompts.DefaultDuration))
	return types.VideoPresets{
		Platform: prompts.PickPreset(platform, prompts.Platforms, prompts.DefaultPlatform),
		Style:    prompts.PickPreset(style, prompts.VideoStyles, prompts.DefaultVideoStyle),
		Duration: key,
		Tool:     prompts.PickPreset(tool, prompts.VideoTools, prompts.DefaultTool),
	}
}

func GenerateVideoPrompts(ctx context.Context, deps StageDeps, in VideoPromptsInput) (VideoPromptsOutput, error) {
	const op = "generate_video_prompts"
	var result *types.VideoPrompts
	out, err := traced(ctx, types.StageVideoPrompts, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		run, err := begin(ctx, deps, in.StageInput, op, types.StageVideoPrompts, beginOptions{})
		if err != nil {
			return StageOutput{}, err
		}
		scenes := decodeStoryboard(run.deps[types.StageStoryboard])
		if len(scenes) == 0 {
			return StageOutput{}, pipeline.MissingDependency(op, types.StageStoryboard)
		}

		presets := ResolveVideoPresets(in.Platform, in.Style, in.Duration, in.Tool)
		_, dMin, dMax := prompts.ParseDuration(presets.Duration)
		raw, err := run.generate(ctx, deps, prompts.PromptVideoPrompts, prompts.Input{
			Title:          run.project.Title,
			Idea:           run.project.Idea,
			Niche:          run.project.Niche,
			Language:       prompts.LanguageName(run.language),
			StoryboardText: storyboardText(scenes),
			Platform:       presets.Platform,
			VideoStyle:     presets.Style,
			DurationPreset: presets.Duration,
			DurationMin:    dMin,
			DurationMax:    dMax,
			Tool:           presets.Tool,
		})
		if err != nil {
			return StageOutput{}, err
		}
		result, err = NormalizeVideoPrompts(op, raw, presets)
		if err != nil {
			run.log.Warn("video prompts output rejected", "error", err)
			return StageOutput{}, err
		}

		art, err := run.persist(ctx, deps, types.StageVideoPrompts, run.language, result)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return VideoPromptsOutput{StageOutput: out, Prompts: result}, err
}

// NormalizeVideoPrompts reshapes items into {sceneNumber, title, variants}.
// Variants may arrive under "variants" or "outputs"; a legacy "fullPrompt"
// fills GENERIC; VEO and RUNWAY fall back to GENERIC. Items without any
// GENERIC text are dropped.
func NormalizeVideoPrompts(op, raw string, presets types.VideoPresets) (*types.VideoPrompts, error) {
	items, err := normalize.List(op, raw, normalize.VideoListKeys...)
	if err != nil {
		return nil, err
	}
	kept := make([]types.VideoPrompt, 0, len(items))
	for i, item := range normalize.DecodeItems[map[string]json.RawMessage](items) {
		sceneNumber := positiveInt(item["sceneNumber"])
		if sceneNumber == 0 {
			sceneNumber = positiveInt(item["scene"])
		}
		if sceneNumber == 0 {
			sceneNumber = i + 1
		}

		variants := variantMap(item["variants"])
		if len(variants) == 0 {
			variants = variantMap(item["outputs"])
		}
		generic := firstNonEmpty(textOf(variants["GENERIC"]), textOf(item["fullPrompt"]))
		if generic == "" {
			continue
		}
		kept = append(kept, types.VideoPrompt{
			SceneNumber: sceneNumber,
			Title:       firstNonEmpty(textOf(item["title"]), fmt.Sprintf("Scene %d", sceneNumber)),
			Variants: types.VideoVariants{
				Generic: generic,
				Veo:     firstNonEmpty(textOf(variants["VEO"]), generic),
				Runway:  firstNonEmpty(textOf(variants["RUNWAY"]), generic),
			},
		})
	}
	if len(kept) == 0 {
		return nil, pipeline.MalformedOutput(op, raw, errNoVideoPrompts)
	}
	return &types.VideoPrompts{
		Presets: presets,
		Tools:   append([]string{}, prompts.VideoTools...),
		Prompts: kept,
	}, nil
}

func variantMap(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

// textOf returns a string value trimmed, or structured JSON pretty-printed.
func textOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[':
		var buf bytes.Buffer
		if json.Indent(&buf, raw, "", "  ") != nil {
			return ""
		}
		return buf.String()
	default:
		return ""
	}
}

func positiveInt(raw json.RawMessage) int {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	if f < 1 || f != math.Trunc(f) {
		return 0
	}
	return int(f)
}
