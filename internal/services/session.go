package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

type StartSessionInput struct {
	ActivityID string `json:"atividade_id" validate:"notblank,uuid"`
}

type CompleteSessionInput struct {
	SessionID      string   `json:"sessao_id" validate:"notblank,uuid"`
	ElapsedSeconds *int     `json:"tempo_gasto_segundos" validate:"required,min=0"`
	Score          *float64 `json:"score" validate:"required,min=0"`
	Accuracy       *float64 `json:"acuracia" validate:"required,min=0,max=100"`
}

type CompleteSessionResult struct {
	SessionID uuid.UUID `json:"sessao_id"`
	// Achievement is set when this completion unlocked one.
	Achievement string `json:"conquista,omitempty"`
}

type SessionService interface {
	Start(ctx context.Context, in StartSessionInput) (uuid.UUID, error)
	Complete(ctx context.Context, in CompleteSessionInput) (*CompleteSessionResult, error)
}

type sessionService struct {
	db           *gorm.DB
	log          *logger.Logger
	childRepo    repos.ChildProfileRepo
	activityRepo repos.ActivityRepo
	sessionRepo  repos.PracticeSessionRepo
	achievements AchievementService
	now          func() time.Time
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	childRepo repos.ChildProfileRepo,
	activityRepo repos.ActivityRepo,
	sessionRepo repos.PracticeSessionRepo,
	achievements AchievementService,
) SessionService {
	return &sessionService{
		db:           db,
		log:          log.With("service", "SessionService"),
		childRepo:    childRepo,
		activityRepo: activityRepo,
		sessionRepo:  sessionRepo,
		achievements: achievements,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (ss *sessionService) Start(ctx context.Context, in StartSessionInput) (uuid.UUID, error) {
	if err := validate.Struct(in); err != nil {
		return uuid.Nil, err
	}
	activityID, err := uuid.Parse(in.ActivityID)
	if err != nil {
		return uuid.Nil, apierr.Validation("identificador inválido: atividade_id")
	}

	var session *types.PracticeSession
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		child, err := actingChild(dbc, ss.childRepo)
		if err != nil {
			return err
		}
		activity, err := ss.activityRepo.GetByID(dbc, activityID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("load activity: %w", err))
		}
		if activity == nil || !activity.Active {
			return apierr.Validation("atividade inexistente ou inativa: %s", activityID)
		}
		session = &types.PracticeSession{
			ChildID:    child.ID,
			ActivityID: activity.ID,
			StartedAt:  ss.now(),
		}
		if err := ss.sessionRepo.Create(dbc, session); err != nil {
			return apierr.Internal(fmt.Errorf("create session: %w", err))
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	ss.log.Debug("Session started", "sessao_id", session.ID, "atividade_id", activityID)
	return session.ID, nil
}

// Complete closes an open session and evaluates the activity's achievement in
// the same transaction. A badge for a newly unlocked achievement is rendered
// after commit.
func (ss *sessionService) Complete(ctx context.Context, in CompleteSessionInput) (*CompleteSessionResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	sessionID, err := uuid.Parse(in.SessionID)
	if err != nil {
		return nil, apierr.Validation("identificador inválido: sessao_id")
	}
	outcome := repos.SessionOutcome{
		EndedAt:        ss.now(),
		ElapsedSeconds: *in.ElapsedSeconds,
		Score:          *in.Score,
		Accuracy:       *in.Accuracy,
	}

	var (
		childID  uuid.UUID
		unlocked string
		key      string
	)
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		child, err := actingChild(dbc, ss.childRepo)
		if err != nil {
			return err
		}
		childID = child.ID

		n, err := ss.sessionRepo.CompleteOpen(dbc, sessionID, child.ID, outcome)
		if err != nil {
			return apierr.Internal(fmt.Errorf("complete session: %w", err))
		}
		session, err := ss.sessionRepo.GetForChild(dbc, sessionID, child.ID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("load session: %w", err))
		}
		if session == nil {
			return apierr.NotFound("sessão não encontrada")
		}
		if n == 0 {
			return apierr.Validation("sessão já concluída")
		}

		activity, err := ss.activityRepo.GetByID(dbc, session.ActivityID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("load activity: %w", err))
		}
		if activity == nil {
			return nil
		}
		key = activity.Key
		unlocked, err = ss.achievements.Evaluate(dbc, child.ID, activity.Key)
		if err != nil {
			return apierr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.Current().IncSessionCompleted(key)
	if unlocked != "" {
		ss.achievements.AttachBadge(ctx, childID, unlocked)
	}
	return &CompleteSessionResult{SessionID: sessionID, Achievement: unlocked}, nil
}
