package user

import (
	"context"
	"testing"

	"github.com/mundotea/mundotea-backend/internal/data/repos/testutil"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
)

func TestPreferenceRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPreferenceRepo(db, testutil.Logger(t))
	acct := testutil.SeedAccount(t, ctx, tx, "pref@example.com")
	child := testutil.SeedChild(t, ctx, tx, acct.ID)

	if err := repo.Upsert(dbc, []*types.Preference{
		{ChildID: child.ID, Key: "tema", Value: "claro"},
		{ChildID: child.ID, Key: "som", Value: "ligado"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, []*types.Preference{
		{ChildID: child.ID, Key: "tema", Value: "escuro"},
	}); err != nil {
		t.Fatalf("Upsert(again): %v", err)
	}

	rows, err := repo.ListByChild(dbc, child.ID)
	if err != nil {
		t.Fatalf("ListByChild: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByChild: want=2 got=%d", len(rows))
	}
	if rows[0].Key != "som" || rows[1].Key != "tema" || rows[1].Value != "escuro" {
		t.Fatalf("ListByChild: got=%+v %+v", rows[0], rows[1])
	}
}
