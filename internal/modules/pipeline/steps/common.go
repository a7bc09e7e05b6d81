package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/quota"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/resolver"
	"github.com/yungbote/shortcraft-backend/internal/observability"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
	"github.com/yungbote/shortcraft-backend/internal/platform/openai"
	"github.com/yungbote/shortcraft-backend/internal/realtime"
	"github.com/yungbote/shortcraft-backend/internal/realtime/bus"
)

// StageDeps is shared by every generation stage.
type StageDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Projects  repos.ProjectRepo
	Artifacts repos.ArtifactRepo
	Resolver  *resolver.Resolver
	Quota     *quota.Limiter
	AI        openai.Client
	// Events is optional; publish failures never fail a stage.
	Events bus.Bus
	Now    func() time.Time
}

// StageInput identifies who asks for which project variant.
type StageInput struct {
	Account   quota.Account
	ProjectID uuid.UUID
	Language  string
}

// StageOutput is the common result of a stage run. Artifact is nil when
// Skipped.
type StageOutput struct {
	Stage    types.StageKind `json:"stage"`
	Skipped  bool            `json:"skipped"`
	Artifact *types.Artifact `json:"artifact,omitempty"`
}

func (d StageDeps) validate(op string) error {
	if d.DB == nil || d.Log == nil || d.Projects == nil || d.Artifacts == nil ||
		d.Resolver == nil || d.Quota == nil || d.AI == nil {
		return fmt.Errorf("%s: missing deps", op)
	}
	return nil
}

func (d StageDeps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// stageRun is the state shared by the stage bodies after the common
// preamble: owner check, language normalization, optional skip, quota gate
// and dependency resolution.
type stageRun struct {
	op       string
	stage    types.StageKind
	dbc      dbctx.Context
	log      *logger.Logger
	project  *types.Project
	language string
	deps     map[types.StageKind]*types.Artifact
}

type beginOptions struct {
	skipIfExists bool
	// gate overrides the stage the quota limiter checks. Empty uses stage.
	gate types.StageKind
	// ungated skips the quota check entirely.
	ungated bool
	// requires overrides the resolver's prerequisite chain when set.
	requires []types.StageKind
}

// begin runs the preamble. A nil run with a nil error means the stage was
// skipped.
func begin(ctx context.Context, deps StageDeps, in StageInput, op string, stage types.StageKind, opts beginOptions) (*stageRun, error) {
	if in.Account.UserID == uuid.Nil {
		return nil, pipeline.Unauthorized(op)
	}
	if in.ProjectID == uuid.Nil {
		return nil, pipeline.Validation(op, "missing project id")
	}
	lang, ok := pipeline.NormalizeLanguage(in.Language)
	if !ok {
		return nil, pipeline.Validation(op, fmt.Sprintf("invalid language %q", in.Language))
	}

	dbc := dbctx.Context{Ctx: ctx}
	log := deps.Log.With("stage", string(stage), "project_id", in.ProjectID.String(), "language", lang)
	if td := ctxutil.GetTraceData(ctx); td != nil && td.RequestID != "" {
		log = log.With("request_id", td.RequestID)
	}

	project, err := deps.Projects.GetForOwner(dbc, in.Account.UserID, in.ProjectID)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
	}
	if project == nil {
		return nil, pipeline.NotFound(op, "project")
	}

	if opts.skipIfExists {
		exists, err := deps.Artifacts.Exists(dbc, project.ID, lang, stage)
		if err != nil {
			return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
		}
		if exists {
			log.Debug("stage output exists; skipping")
			return nil, nil
		}
	}

	gate := opts.gate
	if gate == "" {
		gate = stage
	}
	if !opts.ungated {
		if _, err := deps.Quota.Check(dbc, in.Account, gate); err != nil {
			if pe, ok := pipeline.AsError(err); ok && pe.Quota != nil {
				observability.Current().IncQuotaRejection(pe.Quota.Plan)
			}
			return nil, err
		}
	}

	var loaded map[types.StageKind]*types.Artifact
	if opts.requires != nil {
		loaded = map[types.StageKind]*types.Artifact{}
		for _, k := range opts.requires {
			a, err := deps.Resolver.FindLatestOutput(dbc, project.ID, lang, k)
			if err != nil {
				return nil, pipeline.Wrap(pipeline.CodeInternal, op, err)
			}
			if a == nil {
				return nil, pipeline.MissingDependency(op, k)
			}
			loaded[k] = a
		}
	} else {
		loaded, err = deps.Resolver.Require(dbc, project.ID, lang, stage)
		if err != nil {
			return nil, err
		}
	}

	return &stageRun{
		op:       op,
		stage:    stage,
		dbc:      dbc,
		log:      log,
		project:  project,
		language: lang,
		deps:     loaded,
	}, nil
}

// generate renders the named prompt and calls the generation service.
func (r *stageRun) generate(ctx context.Context, deps StageDeps, name prompts.PromptName, in prompts.Input) (string, error) {
	p, err := prompts.Build(name, in)
	if err != nil {
		return "", pipeline.Wrap(pipeline.CodeValidation, r.op, err)
	}
	start := time.Now()
	raw, err := deps.AI.Generate(ctx, openai.GenerateRequest{
		Stage:       string(r.stage),
		System:      p.System,
		User:        p.User,
		Temperature: p.Temperature,
	})
	if err != nil {
		r.log.Warn("generation failed", "prompt", string(name), "error", err)
		return "", pipeline.GenerationFailure(r.op, err)
	}
	r.log.Debug("generation ok", "prompt", string(name), "prompt_version", p.Version, "ms", time.Since(start).Milliseconds())
	return raw, nil
}

// persist appends content as the next version and announces it.
func (r *stageRun) persist(ctx context.Context, deps StageDeps, kind types.StageKind, language string, content any) (*types.Artifact, error) {
	b, err := json.Marshal(content)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, r.op, err)
	}
	art, err := deps.Artifacts.Create(r.dbc, r.project.ID, language, kind, b)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.CodeInternal, r.op, err)
	}
	r.log.Info("artifact created", "kind", string(kind), "artifact_language", language, "version", art.Version)
	publish(ctx, deps, r.project, art)
	return art, nil
}

func publish(ctx context.Context, deps StageDeps, project *types.Project, art *types.Artifact) {
	if deps.Events == nil || art == nil {
		return
	}
	ev := realtime.ArtifactEvent{
		Type:        realtime.EventArtifactCreated,
		ArtifactID:  art.ID,
		ProjectID:   art.ProjectID,
		OwnerUserID: project.OwnerUserID,
		Language:    art.Language,
		Kind:        string(art.Kind),
		Version:     art.Version,
		CreatedAt:   art.CreatedAt,
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		ev.RequestID = td.RequestID
	}
	if err := deps.Events.Publish(ctx, ev); err != nil {
		deps.Log.Warn("publish artifact event failed", "artifact_id", art.ID.String(), "error", err)
		observability.Current().IncEventPublished("error")
		return
	}
	observability.Current().IncEventPublished("ok")
}

// traced wraps a stage body with a span and the stage-run counter.
func traced(ctx context.Context, stage types.StageKind, projectID uuid.UUID, fn func(ctx context.Context) (StageOutput, error)) (StageOutput, error) {
	ctx, span := observability.Tracer().Start(ctx, "stage."+string(stage))
	defer span.End()
	span.SetAttributes(
		attribute.String("stage", string(stage)),
		attribute.String("project_id", projectID.String()),
	)

	out, err := fn(ctx)
	out.Stage = stage
	outcome := "ok"
	switch {
	case err != nil:
		outcome = string(pipeline.CodeOf(err))
		if outcome == "" {
			outcome = string(pipeline.CodeInternal)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case out.Skipped:
		outcome = "skipped"
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	observability.Current().IncStageRun(string(stage), outcome)
	return out, err
}

// decodeStoryboard reads stored storyboard content, which is a bare array
// or, for older rows, an object wrapping one.
func decodeStoryboard(a *types.Artifact) []types.StoryboardScene {
	if a == nil || len(a.Content) == 0 {
		return nil
	}
	var scenes []types.StoryboardScene
	if err := json.Unmarshal(a.Content, &scenes); err == nil {
		return scenes
	}
	var wrapped struct {
		Scenes     []types.StoryboardScene `json:"scenes"`
		Storyboard []types.StoryboardScene `json:"storyboard"`
	}
	if err := json.Unmarshal(a.Content, &wrapped); err != nil {
		return nil
	}
	if len(wrapped.Scenes) > 0 {
		return wrapped.Scenes
	}
	return wrapped.Storyboard
}

func storyboardText(scenes []types.StoryboardScene) string {
	var b strings.Builder
	for i, s := range scenes {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Scene %d:\n", s.Scene)
		fmt.Fprintf(&b, "- On-screen text: %s\n", s.OnScreenText)
		fmt.Fprintf(&b, "- Voiceover: %s\n", s.Voiceover)
		fmt.Fprintf(&b, "- Visual: %s", s.Visual)
	}
	return b.String()
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
