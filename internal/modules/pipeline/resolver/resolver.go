// Package resolver finds the upstream artifacts a stage builds on.
package resolver

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
	"github.com/yungbote/shortcraft-backend/internal/platform/logger"
)

var prerequisites = map[types.StageKind][]types.StageKind{
	types.StageStoryboard:    {types.StageHooks},
	types.StageImagePrompts:  {types.StageStoryboard},
	types.StageVideoPrompts:  {types.StageStoryboard},
	types.StageEditingScript: {types.StageStoryboard, types.StageVideoPrompts},
}

// Prerequisites lists the stages that must exist before stage can run, in
// declaration order.
func Prerequisites(stage types.StageKind) []types.StageKind {
	return append([]types.StageKind{}, prerequisites[stage]...)
}

type Resolver struct {
	artifacts repos.ArtifactRepo
	log       *logger.Logger
}

func New(artifacts repos.ArtifactRepo, baseLog *logger.Logger) *Resolver {
	return &Resolver{artifacts: artifacts, log: baseLog.With("service", "DependencyResolver")}
}

// FindLatestOutput prefers the exact language variant and falls back to the
// newest artifact of that kind in any variant. nil means neither exists.
func (r *Resolver) FindLatestOutput(dbc dbctx.Context, projectID uuid.UUID, language string, kind types.StageKind) (*types.Artifact, error) {
	row, err := r.artifacts.Latest(dbc, projectID, language, kind)
	if err != nil || row != nil {
		return row, err
	}
	row, err = r.artifacts.LatestAny(dbc, projectID, kind)
	if err != nil {
		return nil, err
	}
	if row != nil {
		r.log.Debug("using fallback language variant",
			"project_id", projectID,
			"kind", kind,
			"wanted", language,
			"found", row.Language,
		)
	}
	return row, nil
}

// Require loads every prerequisite of stage. The first absent one, in
// declaration order, fails with MissingDependency.
func (r *Resolver) Require(dbc dbctx.Context, projectID uuid.UUID, language string, stage types.StageKind) (map[types.StageKind]*types.Artifact, error) {
	deps := prerequisites[stage]
	found := make([]*types.Artifact, len(deps))

	// A transaction is a single connection; loads run one at a time there.
	if dbc.InTx() || len(deps) < 2 {
		for i, kind := range deps {
			row, err := r.FindLatestOutput(dbc, projectID, language, kind)
			if err != nil {
				return nil, err
			}
			found[i] = row
		}
	} else {
		g, gctx := errgroup.WithContext(ctxOf(dbc))
		for i, kind := range deps {
			i, kind := i, kind
			g.Go(func() error {
				row, err := r.FindLatestOutput(dbctx.Context{Ctx: gctx}, projectID, language, kind)
				if err != nil {
					return err
				}
				found[i] = row
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make(map[types.StageKind]*types.Artifact, len(deps))
	for i, kind := range deps {
		if found[i] == nil {
			return nil, pipeline.MissingDependency("resolver.require", kind)
		}
		out[kind] = found[i]
	}
	return out, nil
}

func ctxOf(dbc dbctx.Context) context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return dbc.Ctx
}
