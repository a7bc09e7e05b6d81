package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/data/repos"
	"github.com/yungbote/shortcraft-backend/internal/data/repos/testutil"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/platform/ctxutil"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
)

func TestRegisterLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	auth := NewAuthService(db, log, users, "test-secret", time.Hour)

	_, err := auth.Register(ctx, "not-an-email", "longenough")
	assert.True(t, pipeline.IsCode(err, pipeline.CodeValidation))
	_, err = auth.Register(ctx, "dr@clinic.test", "short")
	assert.True(t, pipeline.IsCode(err, pipeline.CodeValidation))

	u, err := auth.Register(ctx, "  Dr@Clinic.test ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "dr@clinic.test", u.Email)
	assert.NotEqual(t, "correct horse", u.Password)

	_, err = auth.Register(ctx, "dr@clinic.test", "another password")
	assert.True(t, pipeline.IsCode(err, pipeline.CodeConflict))

	_, _, err = auth.Login(ctx, "dr@clinic.test", "wrong password")
	assert.True(t, pipeline.IsCode(err, pipeline.CodeUnauthorized))
	_, _, err = auth.Login(ctx, "nobody@clinic.test", "correct horse")
	assert.True(t, pipeline.IsCode(err, pipeline.CodeUnauthorized))

	tok, who, err := auth.Login(ctx, "DR@clinic.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, who.ID)

	authed, err := auth.SetContextFromToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ctxutil.UserID(authed))

	_, err = auth.SetContextFromToken(ctx, tok+"x")
	assert.Error(t, err)

	other := NewAuthService(db, log, users, "other-secret", time.Hour)
	_, err = other.SetContextFromToken(ctx, tok)
	assert.Error(t, err)

	me, err := NewUserService(log, users).Account(dbctx.Context{Ctx: authed})
	require.NoError(t, err)
	assert.Equal(t, "dr@clinic.test", me.Email)
}

func TestExpiredTokenRejected(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	svc := NewAuthService(db, log, users, "s", time.Minute).(*authService)

	u, err := svc.Register(ctx, "late@clinic.test", "correct horse")
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	tok, err := svc.generateAccessToken(u)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.SetContextFromToken(ctx, tok)
	assert.Error(t, err)
}

func TestProjectsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewProjectService(log, repos.NewProjectRepo(db, log))

	alice := testutil.SeedUser(t, ctx, db, "")
	bob := testutil.SeedUser(t, ctx, db, "")
	asAlice := dbctx.Context{Ctx: ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: alice.ID})}
	asBob := dbctx.Context{Ctx: ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: bob.ID})}

	_, err := svc.Create(asAlice, CreateProjectInput{Title: "x"})
	assert.True(t, pipeline.IsCode(err, pipeline.CodeValidation))

	p, err := svc.Create(asAlice, CreateProjectInput{Idea: "Dentist outreach\nfill empty chairs", Niche: "dental"})
	require.NoError(t, err)
	assert.Equal(t, "Dentist outreach", p.Title)

	got, err := svc.Get(asAlice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(asBob, p.ID)
	assert.True(t, pipeline.IsCode(err, pipeline.CodeNotFound))

	list, err := svc.List(asBob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.List(dbctx.Context{Ctx: ctx})
	assert.True(t, pipeline.IsCode(err, pipeline.CodeUnauthorized))
}
