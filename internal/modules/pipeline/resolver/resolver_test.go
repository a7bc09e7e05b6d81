package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/data/repos/artifacts"
	"github.com/yungbote/shortcraft-backend/internal/data/repos/testutil"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
)

func TestFindLatestOutputFallback(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := New(artifacts.NewArtifactRepo(db, log), log)

	u := testutil.SeedUser(t, ctx, db, "")
	p := testutil.SeedProject(t, ctx, db, u.ID, "dentist outreach")
	dbc := dbctx.New(ctx)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := r.FindLatestOutput(dbc, p.ID, "en", pipeline.StageHooks)
	require.NoError(t, err)
	assert.Nil(t, got)

	testutil.SeedArtifact(t, ctx, db, p.ID, "fr", pipeline.StageHooks, 1, `["un"]`, base)
	testutil.SeedArtifact(t, ctx, db, p.ID, "de", pipeline.StageHooks, 1, `["eins"]`, base.Add(time.Hour))

	got, err = r.FindLatestOutput(dbc, p.ID, "en", pipeline.StageHooks)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "de", got.Language)

	testutil.SeedArtifact(t, ctx, db, p.ID, "en", pipeline.StageHooks, 1, `["one"]`, base.Add(-time.Hour))
	testutil.SeedArtifact(t, ctx, db, p.ID, "en", pipeline.StageHooks, 2, `["two"]`, base.Add(-time.Minute))

	got, err = r.FindLatestOutput(dbc, p.ID, "en", pipeline.StageHooks)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, 2, got.Version)
}

func TestRequireReportsFirstMissingInOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := New(artifacts.NewArtifactRepo(db, log), log)

	u := testutil.SeedUser(t, ctx, db, "")
	p := testutil.SeedProject(t, ctx, db, u.ID, "dentist outreach")
	dbc := dbctx.New(ctx)
	now := time.Now()

	_, err := r.Require(dbc, p.ID, "en", pipeline.StageEditingScript)
	pe, ok := pipeline.AsError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.CodeMissingDependency, pe.Code)
	assert.Equal(t, pipeline.StageStoryboard, pe.Stage)
	assert.Contains(t, pe.Message, "storyboard")

	testutil.SeedArtifact(t, ctx, db, p.ID, "en", pipeline.StageStoryboard, 1, `[{"scene":1}]`, now)
	_, err = r.Require(dbc, p.ID, "en", pipeline.StageEditingScript)
	pe, ok = pipeline.AsError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageVideoPrompts, pe.Stage)

	testutil.SeedArtifact(t, ctx, db, p.ID, "fr", pipeline.StageVideoPrompts, 1, `{"prompts":[]}`, now)
	deps, err := r.Require(dbc, p.ID, "en", pipeline.StageEditingScript)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "fr", deps[pipeline.StageVideoPrompts].Language)

	deps, err = r.Require(dbc, p.ID, "en", pipeline.StageHooks)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestRequireInsideTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, db)
	r := New(artifacts.NewArtifactRepo(db, log), log)

	u := testutil.SeedUser(t, ctx, tx, "")
	p := testutil.SeedProject(t, ctx, tx, u.ID, "x")
	testutil.SeedArtifact(t, ctx, tx, p.ID, "en", pipeline.StageStoryboard, 1, `[]`, time.Now())
	testutil.SeedArtifact(t, ctx, tx, p.ID, "en", pipeline.StageVideoPrompts, 1, `{}`, time.Now())

	deps, err := r.Require(dbctx.Context{Ctx: ctx, Tx: tx}, p.ID, "en", pipeline.StageEditingScript)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}

func TestPrerequisitesChain(t *testing.T) {
	assert.Equal(t, []pipeline.StageKind{pipeline.StageHooks}, Prerequisites(pipeline.StageStoryboard))
	assert.Equal(t, []pipeline.StageKind{pipeline.StageStoryboard}, Prerequisites(pipeline.StageImagePrompts))
	assert.Equal(t, []pipeline.StageKind{pipeline.StageStoryboard}, Prerequisites(pipeline.StageVideoPrompts))
	assert.Equal(t, []pipeline.StageKind{pipeline.StageStoryboard, pipeline.StageVideoPrompts}, Prerequisites(pipeline.StageEditingScript))
	assert.Empty(t, Prerequisites(pipeline.StageHooks))
}
