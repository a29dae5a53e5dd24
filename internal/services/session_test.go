package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
)

func dbcOf(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

func completeInput(sessionID uuid.UUID) CompleteSessionInput {
	return CompleteSessionInput{
		SessionID:      sessionID.String(),
		ElapsedSeconds: intPtr(95),
		Score:          floatPtr(80),
		Accuracy:       floatPtr(92.5),
	}
}

func TestSessionCompleteUnlocksMappedAchievement(t *testing.T) {
	e := newTestEnv(t)
	ctx, res := e.registered(t)

	id, err := e.sessions.Start(ctx, StartSessionInput{ActivityID: e.activityID(t, "quebra-cabeca").String()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	out, err := e.sessions.Complete(ctx, completeInput(id))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Achievement != "Primeiro Quebra-Cabeça" {
		t.Fatalf("achievement: want=%q got=%q", "Primeiro Quebra-Cabeça", out.Achievement)
	}

	s, err := e.repos.PracticeSession.GetForChild(dbcOf(context.Background()), id, res.ChildID)
	if err != nil || s == nil {
		t.Fatalf("GetForChild: s=%v err=%v", s, err)
	}
	if s.EndedAt == nil || *s.ElapsedSeconds != 95 || *s.Score != 80 || *s.Accuracy != 92.5 {
		t.Fatalf("completed session: got=%+v", s)
	}

	unlocked, err := e.achievements.ListForAccount(ctx, false)
	if err != nil {
		t.Fatalf("ListForAccount: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Name != "Primeiro Quebra-Cabeça" {
		t.Fatalf("unlocked: got=%+v", unlocked)
	}
	img := unlocked[0].Image
	if img == nil || !strings.HasPrefix(*img, "conquistas/"+res.ChildID.String()+"/") || !e.store.has(*img) {
		t.Fatalf("badge image: got=%v", img)
	}
	if unlocked[0].ImageURL != "/uploads/"+*img {
		t.Fatalf("badge url: got=%q", unlocked[0].ImageURL)
	}

	// A second session of the same activity does not unlock again.
	id2, err := e.sessions.Start(ctx, StartSessionInput{ActivityID: e.activityID(t, "quebra-cabeca").String()})
	if err != nil {
		t.Fatalf("Start 2: %v", err)
	}
	out, err = e.sessions.Complete(ctx, completeInput(id2))
	if err != nil {
		t.Fatalf("Complete 2: %v", err)
	}
	if out.Achievement != "" {
		t.Fatalf("repeat unlock: got=%q", out.Achievement)
	}
}

func TestSessionCompleteTwiceIsRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx, _ := e.registered(t)
	id, err := e.sessions.Start(ctx, StartSessionInput{ActivityID: e.activityID(t, "colorir").String()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := e.sessions.Complete(ctx, completeInput(id)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := e.sessions.Complete(ctx, completeInput(id)); !apierr.HasCode(err, apierr.CodeValidation) {
		t.Fatalf("second Complete: want validation_error got %v", err)
	}
}

func TestSessionConcurrentCompleteHasOneWinner(t *testing.T) {
	e := newTestEnv(t)
	ctx, _ := e.registered(t)
	id, err := e.sessions.Start(ctx, StartSessionInput{ActivityID: e.activityID(t, "jogo-da-memoria").String()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.sessions.Complete(ctx, completeInput(id))
		}(i)
	}
	wg.Wait()
	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !apierr.HasCode(err, apierr.CodeValidation) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("winners: want=1 got=%d", ok)
	}
}

func TestSessionNotFoundAndOwnership(t *testing.T) {
	e := newTestEnv(t)
	ownerCtx, _ := e.registered(t)
	otherCtx, _ := e.registered(t)

	id, err := e.sessions.Start(ownerCtx, StartSessionInput{ActivityID: e.activityID(t, "colorir").String()})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := e.sessions.Complete(otherCtx, completeInput(id)); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("foreign session: want not_found got %v", err)
	}
	if _, err := e.sessions.Complete(ownerCtx, completeInput(uuid.New())); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("unknown session: want not_found got %v", err)
	}
	// The foreign attempt must not have closed the session.
	if _, err := e.sessions.Complete(ownerCtx, completeInput(id)); err != nil {
		t.Fatalf("owner Complete: %v", err)
	}
}

func TestSessionValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx, _ := e.registered(t)

	for name, in := range map[string]StartSessionInput{
		"missing":  {},
		"not uuid": {ActivityID: "colorir"},
		"unknown":  {ActivityID: uuid.NewString()},
	} {
		if _, err := e.sessions.Start(ctx, in); !apierr.HasCode(err, apierr.CodeValidation) {
			t.Fatalf("Start %s: want validation_error got %v", name, err)
		}
	}

	id := uuid.New()
	cases := map[string]func(*CompleteSessionInput){
		"negative time":     func(in *CompleteSessionInput) { in.ElapsedSeconds = intPtr(-1) },
		"negative score":    func(in *CompleteSessionInput) { in.Score = floatPtr(-0.5) },
		"accuracy over 100": func(in *CompleteSessionInput) { in.Accuracy = floatPtr(100.1) },
		"missing accuracy":  func(in *CompleteSessionInput) { in.Accuracy = nil },
		"bad session id":    func(in *CompleteSessionInput) { in.SessionID = "x" },
	}
	for name, mutate := range cases {
		in := completeInput(id)
		mutate(&in)
		if _, err := e.sessions.Complete(ctx, in); !apierr.HasCode(err, apierr.CodeValidation) {
			t.Fatalf("Complete %s: want validation_error got %v", name, err)
		}
	}
}
