package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
)

func TestProfileGetAndUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx, res := e.registered(t)

	p, err := e.profiles.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.ChildID != res.ChildID || p.ChildName != "Lucas" || p.BirthDate != "2017-03-14" || p.AutismLevel != 2 {
		t.Fatalf("Get: got=%+v", p)
	}

	in := validProfileInput()
	in.ChildName = "Lucas Souza"
	in.AutismLevel = intPtr(3)
	in.GuardianEmail = " NOVO@Example.com "
	in.Needs = strPtr("Fones abafadores")
	updated, err := e.profiles.Update(ctx, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ChildName != "Lucas Souza" || updated.AutismLevel != 3 || updated.GuardianEmail != "novo@example.com" {
		t.Fatalf("Update: got=%+v", updated)
	}
	if updated.Needs == nil || *updated.Needs != "Fones abafadores" {
		t.Fatalf("Update needs: got=%v", updated.Needs)
	}

	// Needs is cleared when omitted; the update is a full replace.
	in.Needs = nil
	updated, err = e.profiles.Update(ctx, in)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if updated.Needs != nil {
		t.Fatalf("needs should be cleared: got=%q", *updated.Needs)
	}
}

func TestProfileUpdateRejectsPartialInput(t *testing.T) {
	e := newTestEnv(t)
	ctx, _ := e.registered(t)

	in := validProfileInput()
	in.MotherName = ""
	if _, err := e.profiles.Update(ctx, in); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("want validation_error got %v", err)
	}
	p, err := e.profiles.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.MotherName != "Beatriz" {
		t.Fatalf("profile changed after rejected update: got=%q", p.MotherName)
	}
}

func TestProfileRequiresKnownAccount(t *testing.T) {
	e := newTestEnv(t)

	if _, err := e.profiles.Get(context.Background()); !apierr.HasCode(err, apierr.CodeUnauthenticated) {
		t.Fatalf("no account: want unauthenticated got %v", err)
	}
	ghost := actingAs(uuid.New())
	if _, err := e.profiles.Get(ghost); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("Get ghost: want not_found got %v", err)
	}
	if _, err := e.profiles.Update(ghost, validProfileInput()); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("Update ghost: want not_found got %v", err)
	}
}
