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

var errNoImagePrompts = errors.New("no usable image prompts")

type ImagePromptsInput struct {
	StageInput
	// Style forces an image style; empty infers one from the project text.
	Style string
	// Character replaces the default character consistency block.
	Character string
}

type ImagePromptsOutput struct {
	StageOutput
	Prompts *types.ImagePrompts `json:"prompts,omitempty"`
}

func GenerateImagePrompts(ctx context.Context, deps StageDeps, in ImagePromptsInput) (ImagePromptsOutput, error) {
	const op = "generate_image_prompts"
	var result *types.ImagePrompts
	out, err := traced(ctx, types.StageImagePrompts, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		var style prompts.ImageStyle
		if strings.TrimSpace(in.Style) != "" {
			parsed, ok := prompts.ParseImageStyle(in.Style)
			if !ok {
				return StageOutput{}, pipeline.Validation(op, "unknown image style "+strings.TrimSpace(in.Style))
			}
			style = parsed
		}

		run, err := begin(ctx, deps, in.StageInput, op, types.StageImagePrompts, beginOptions{})
		if err != nil {
			return StageOutput{}, err
		}
		scenes := decodeStoryboard(run.deps[types.StageStoryboard])
		if len(scenes) == 0 {
			return StageOutput{}, pipeline.MissingDependency(op, types.StageStoryboard)
		}
		if style == "" {
			style = prompts.InferStyle(run.project.Niche, run.project.Title, run.project.Idea)
		}

		raw, err := run.generate(ctx, deps, prompts.PromptImagePrompts, prompts.Input{
			Title:          run.project.Title,
			Idea:           run.project.Idea,
			Niche:          run.project.Niche,
			Language:       prompts.LanguageName(run.language),
			StoryboardText: storyboardText(scenes),
			Style:          string(style),
			StyleProfile:   prompts.StyleProfile(style),
			StyleNames:     strings.Join(prompts.StyleNames(), ", "),
			Character:      firstNonEmpty(in.Character, prompts.DefaultCharacter),
		})
		if err != nil {
			return StageOutput{}, err
		}
		result, err = NormalizeImagePrompts(op, raw, string(style))
		if err != nil {
			run.log.Warn("image prompts output rejected", "error", err)
			return StageOutput{}, err
		}

		art, err := run.persist(ctx, deps, types.StageImagePrompts, run.language, result)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return ImagePromptsOutput{StageOutput: out, Prompts: result}, err
}

// NormalizeImagePrompts keeps items with a scene number and a prompt text and
// stamps the chosen style on items that omit one.
func NormalizeImagePrompts(op, raw, style string) (*types.ImagePrompts, error) {
	items, err := normalize.List(op, raw, normalize.ImageListKeys...)
	if err != nil {
		return nil, err
	}
	kept := make([]types.ImagePrompt, 0, len(items))
	for _, p := range normalize.DecodeItems[types.ImagePrompt](items) {
		p.ImagePrompt = strings.TrimSpace(p.ImagePrompt)
		if p.Scene < 1 || p.ImagePrompt == "" {
			continue
		}
		p.Character = strings.TrimSpace(p.Character)
		p.Intent = strings.TrimSpace(p.Intent)
		p.Style = firstNonEmpty(p.Style, style)
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, pipeline.MalformedOutput(op, raw, errNoImagePrompts)
	}
	return &types.ImagePrompts{Style: style, Count: len(kept), Prompts: kept}, nil
}
