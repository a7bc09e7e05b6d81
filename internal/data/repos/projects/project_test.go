package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/shortcraft-backend/internal/data/repos/testutil"
	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/platform/dbctx"
)

func TestProjectRepoOwnerScoping(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "")
	stranger := testutil.SeedUser(t, ctx, tx, "")
	repo := NewProjectRepo(db, testutil.Logger(t))

	p, err := repo.Create(dbc, &types.Project{OwnerUserID: owner.ID, Title: " Dentist ", Idea: "dentist outreach"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil || p.Title != "Dentist" {
		t.Fatalf("Create: unexpected %+v", p)
	}

	got, err := repo.GetForOwner(dbc, owner.ID, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetForOwner: expected project, got %+v, %v", got, err)
	}
	hidden, err := repo.GetForOwner(dbc, stranger.ID, p.ID)
	if err != nil || hidden != nil {
		t.Fatalf("GetForOwner: expected nil for stranger, got %+v, %v", hidden, err)
	}

	list, err := repo.ListByOwner(dbc, owner.ID, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOwner: expected 1, got %d, %v", len(list), err)
	}
}
