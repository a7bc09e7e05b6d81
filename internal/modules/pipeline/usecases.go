package pipeline

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	domain "github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/resolver"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/steps"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
	"github.com/yungbote/shortcraft-backend/internal/platform/openai"
	"github.com/yungbote/shortcraft-backend/internal/realtime/bus"
)

const maxVersionsListed = 50

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Projects  repos.ProjectRepo
	Artifacts repos.ArtifactRepo

	Resolver *resolver.Resolver
	Quota    *quota.Limiter

	AI     openai.Client
	Events bus.Bus

	// VideoSceneCost applies when a request does not override it.
	VideoSceneCost int
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	StageInput  = steps.StageInput
	StageOutput = steps.StageOutput

	HooksInput  = steps.HooksInput
	HooksOutput = steps.HooksOutput

	StoryboardInput  = steps.StoryboardInput
	StoryboardOutput = steps.StoryboardOutput

	ImagePromptsInput  = steps.ImagePromptsInput
	ImagePromptsOutput = steps.ImagePromptsOutput

	VideoPromptsInput  = steps.VideoPromptsInput
	VideoPromptsOutput = steps.VideoPromptsOutput

	EditingScriptInput  = steps.EditingScriptInput
	EditingScriptOutput = steps.EditingScriptOutput

	TranslateInput  = steps.TranslateInput
	TranslateOutput = steps.TranslateOutput

	SelectHookInput  = steps.SelectHookInput
	SelectHookOutput = steps.SelectHookOutput
)

func (u Usecases) stageDeps() steps.StageDeps {
	return steps.StageDeps{
		DB:        u.deps.DB,
		Log:       u.deps.Log,
		Projects:  u.deps.Projects,
		Artifacts: u.deps.Artifacts,
		Resolver:  u.deps.Resolver,
		Quota:     u.deps.Quota,
		AI:        u.deps.AI,
		Events:    u.deps.Events,
	}
}

func (u Usecases) GenerateHooks(ctx context.Context, in HooksInput) (HooksOutput, error) {
	return steps.GenerateHooks(ctx, u.stageDeps(), in)
}

func (u Usecases) GenerateStoryboard(ctx context.Context, in StoryboardInput) (StoryboardOutput, error) {
	return steps.GenerateStoryboard(ctx, u.stageDeps(), in)
}

func (u Usecases) GenerateImagePrompts(ctx context.Context, in ImagePromptsInput) (ImagePromptsOutput, error) {
	return steps.GenerateImagePrompts(ctx, u.stageDeps(), in)
}

func (u Usecases) GenerateVideoPrompts(ctx context.Context, in VideoPromptsInput) (VideoPromptsOutput, error) {
	return steps.GenerateVideoPrompts(ctx, u.stageDeps(), in)
}

func (u Usecases) GenerateEditingScript(ctx context.Context, in EditingScriptInput) (EditingScriptOutput, error) {
	if in.VideoSceneCost == nil && u.deps.VideoSceneCost >= 0 {
		cost := u.deps.VideoSceneCost
		in.VideoSceneCost = &cost
	}
	return steps.GenerateEditingScript(ctx, u.stageDeps(), in)
}

func (u Usecases) TranslateOutput(ctx context.Context, in TranslateInput) (TranslateOutput, error) {
	return steps.TranslateOutputs(ctx, u.stageDeps(), in)
}

func (u Usecases) SelectHook(ctx context.Context, in SelectHookInput) (SelectHookOutput, error) {
	return steps.SelectHook(ctx, u.stageDeps(), in)
}

// LatestOutput returns the newest artifact of kind for the project, falling
// back to any language. A nil artifact means nothing was generated yet.
func (u Usecases) LatestOutput(ctx context.Context, ownerUserID, projectID uuid.UUID, language string, kind types.StageKind) (*types.Artifact, error) {
	const op = "latest_output"
	dbc, lang, err := u.ownedVariant(ctx, op, ownerUserID, projectID, language)
	if err != nil {
		return nil, err
	}
	a, err := u.deps.Resolver.FindLatestOutput(dbc, projectID, lang, kind)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	return a, nil
}

// Versions lists the exact-language history of kind, newest first.
func (u Usecases) Versions(ctx context.Context, ownerUserID, projectID uuid.UUID, language string, kind types.StageKind) ([]*types.Artifact, error) {
	const op = "list_versions"
	dbc, lang, err := u.ownedVariant(ctx, op, ownerUserID, projectID, language)
	if err != nil {
		return nil, err
	}
	list, err := u.deps.Artifacts.ListVersions(dbc, projectID, lang, kind, maxVersionsListed)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	return list, nil
}

// QuotaStatus reports plan, limits and usage for display.
func (u Usecases) QuotaStatus(ctx context.Context, acct quota.Account) (quota.Status, error) {
	st, err := u.deps.Quota.Status(dbctx.Context{Ctx: ctx}, acct)
	if err != nil {
		return st, domain.Wrap(domain.CodeInternal, "quota_status", err)
	}
	return st, nil
}

func (u Usecases) ownedVariant(ctx context.Context, op string, ownerUserID, projectID uuid.UUID, language string) (dbctx.Context, string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	lang, ok := domain.NormalizeLanguage(language)
	if !ok {
		return dbc, "", domain.Validation(op, "invalid language")
	}
	p, err := u.deps.Projects.GetForOwner(dbc, ownerUserID, projectID)
	if err != nil {
		return dbc, "", domain.Wrap(domain.CodeInternal, op, err)
	}
	if p == nil {
		return dbc, "", domain.NotFound(op, "project")
	}
	return dbc, lang, nil
}
