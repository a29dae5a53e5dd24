package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/data/repos/testutil"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
)

func TestChildProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewChildProfileRepo(db, testutil.Logger(t))
	acct := testutil.SeedAccount(t, ctx, tx, "mae@example.com")

	if err := repo.Create(dbc, &types.ChildProfile{Name: "sem dono"}); err == nil {
		t.Fatalf("Create: expected error for profile without account")
	}

	needs := "rotina visual"
	p := &types.ChildProfile{
		AccountID:     acct.ID,
		Name:          "Lia",
		BirthDate:     time.Date(2017, 3, 9, 0, 0, 0, 0, time.UTC),
		AutismLevel:   2,
		FatherName:    "João",
		MotherName:    "Rita",
		GuardianPhone: "1133334444",
		GuardianEmail: "rita@example.com",
		Needs:         &needs,
	}
	if err := repo.Create(dbc, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByAccountID(dbc, acct.ID)
	if err != nil || got == nil || got.ID != p.ID {
		t.Fatalf("GetByAccountID: got=%v err=%v", got, err)
	}
	if got.Needs == nil || *got.Needs != needs {
		t.Fatalf("GetByAccountID: want needs=%q got=%v", needs, got.Needs)
	}
	if got, err := repo.GetByAccountID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByAccountID(missing): got=%v err=%v", got, err)
	}

	update := *p
	update.Name = "Lia Souza"
	update.AutismLevel = 3
	update.Needs = nil
	n, err := repo.ReplaceFields(dbc, acct.ID, &update)
	if err != nil || n != 1 {
		t.Fatalf("ReplaceFields: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByAccountID(dbc, acct.ID)
	if got.Name != "Lia Souza" || got.AutismLevel != 3 || got.Needs != nil {
		t.Fatalf("ReplaceFields: got=%+v", got)
	}
	if got.ID != p.ID || got.AccountID != acct.ID {
		t.Fatalf("ReplaceFields: identity changed got=%+v", got)
	}

	if n, err := repo.ReplaceFields(dbc, uuid.New(), &update); err != nil || n != 0 {
		t.Fatalf("ReplaceFields(missing): n=%d err=%v", n, err)
	}
}
