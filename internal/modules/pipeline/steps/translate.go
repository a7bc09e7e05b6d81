package steps

import (
	"bytes"
	"context"
	"strings"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/normalize"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
)

var translatableKinds = map[types.StageKind]bool{
	types.StageHooks:      true,
	types.StageStoryboard: true,
	types.StageScript:     true,
}

var supportedLanguages = map[string]bool{"en": true, "fr": true}

type TranslateInput struct {
	StageInput
	Kind string
	// SourceLanguage is optional; the latest output in any language is used
	// when it has none.
	SourceLanguage string
}

type TranslateOutput struct {
	StageOutput
	SourceLanguage string `json:"sourceLanguage,omitempty"`
}

// TranslateOutputs appends a translated copy of the latest output of Kind
// as the next version in the target language (StageInput.Language).
func TranslateOutputs(ctx context.Context, deps StageDeps, in TranslateInput) (TranslateOutput, error) {
	const op = "translate_output"
	kind, ok := pipeline.ParseStageKind(in.Kind)
	if !ok || !translatableKinds[kind] {
		return TranslateOutput{}, pipeline.Validation(op, "kind must be hooks, storyboard or script")
	}
	target := strings.ToLower(strings.TrimSpace(in.Language))
	if !supportedLanguages[target] {
		return TranslateOutput{}, pipeline.Validation(op, "targetLanguage must be en or fr")
	}

	var sourceLang string
	out, err := traced(ctx, kind, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		run, err := begin(ctx, deps, in.StageInput, op, kind, beginOptions{requires: []types.StageKind{}})
		if err != nil {
			return StageOutput{}, err
		}

		source, err := translationSource(deps, run, kind, in.SourceLanguage)
		if err != nil {
			return StageOutput{}, err
		}
		sourceLang = source.Language

		raw, err := run.generate(ctx, deps, prompts.PromptTranslate, prompts.Input{
			Title:          run.project.Title,
			Kind:           string(kind),
			SourceLanguage: source.Language,
			TargetLanguage: prompts.LanguageName(target),
			ContentJSON:    prettyContent(source),
		})
		if err != nil {
			return StageOutput{}, err
		}
		content, err := NormalizeTranslation(op, raw, kind, source.Content)
		if err != nil {
			run.log.Warn("translation output rejected", "kind", string(kind), "error", err)
			return StageOutput{}, err
		}

		art, err := run.persist(ctx, deps, kind, target, content)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return TranslateOutput{StageOutput: out, SourceLanguage: sourceLang}, err
}

func translationSource(deps StageDeps, run *stageRun, kind types.StageKind, sourceLanguage string) (*types.Artifact, error) {
	src := strings.ToLower(strings.TrimSpace(sourceLanguage))
	if supportedLanguages[src] {
		a, err := deps.Artifacts.Latest(run.dbc, run.project.ID, src, kind)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.CodeInternal, run.op, err)
		}
		if a != nil {
			return a, nil
		}
	}
	a, err := deps.Artifacts.LatestAny(run.dbc, run.project.ID, kind)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, run.op, err)
	}
	if a == nil {
		return nil, pipeline.MissingDependency(run.op, kind)
	}
	return a, nil
}

// NormalizeTranslation decodes the translated text in the same container as
// source. Hooks and storyboards go through their stage normalizers.
func NormalizeTranslation(op, raw string, kind types.StageKind, source []byte) (any, error) {
	switch kind {
	case types.StageHooks:
		return NormalizeHooks(op, raw)
	case types.StageStoryboard:
		return NormalizeStoryboard(op, raw)
	}
	if src := bytes.TrimSpace(source); len(src) > 0 && src[0] == '[' {
		items, err := normalize.List(op, raw)
		if err != nil {
			return nil, err
		}
		return items, nil
	}
	fields, err := normalize.Fields(op, raw)
	if err != nil {
		return nil, err
	}
	return fields, nil
}
