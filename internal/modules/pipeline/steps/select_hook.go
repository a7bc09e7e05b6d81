package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

type SelectHookInput struct {
	StageInput
	Hook string
}

type SelectHookOutput struct {
	StageOutput
	Selection *types.SelectedHook `json:"selection,omitempty"`
}

// SelectHook records the hook the storyboard should open with. The selection
// is stored under the hook's own language; it is not a generation and is
// never quota gated.
func SelectHook(ctx context.Context, deps StageDeps, in SelectHookInput) (SelectHookOutput, error) {
	const op = "select_hook"
	hook := strings.TrimSpace(in.Hook)
	if hook == "" {
		return SelectHookOutput{}, pipeline.Validation(op, "hook is required")
	}
	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang == "" {
		lang = pipeline.DefaultLanguage
	}
	if !supportedLanguages[lang] {
		return SelectHookOutput{}, pipeline.Validation(op, "language must be en or fr")
	}
	in.Language = lang

	var sel *types.SelectedHook
	out, err := traced(ctx, types.StageSelectedHook, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if deps.DB == nil || deps.Log == nil || deps.Projects == nil || deps.Artifacts == nil {
			return StageOutput{}, fmt.Errorf("%s: missing deps", op)
		}
		run, err := begin(ctx, deps, in.StageInput, op, types.StageSelectedHook, beginOptions{
			ungated:  true,
			requires: []types.StageKind{},
		})
		if err != nil {
			return StageOutput{}, err
		}
		sel = &types.SelectedHook{
			Hook:       hook,
			Language:   lang,
			SelectedAt: deps.now().Format(time.RFC3339),
		}
		art, err := run.persist(ctx, deps, types.StageSelectedHook, lang, sel)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return SelectHookOutput{StageOutput: out, Selection: sel}, err
}
