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
)

const (
	unlockTriggerSession = "session"
	unlockTriggerImage   = "image"
)

// AchievementView is what clients see for one achievement.
type AchievementView struct {
	Name        string     `json:"nome"`
	Description string     `json:"descricao,omitempty"`
	Unlocked    bool       `json:"desbloqueada"`
	Image       *string    `json:"imagem,omitempty"`
	ImageURL    string     `json:"imagem_url,omitempty"`
	UnlockedAt  *time.Time `json:"desbloqueada_em,omitempty"`
}

type AchievementService interface {
	SeedStarter(dbc dbctx.Context, childID uuid.UUID) error
	Evaluate(dbc dbctx.Context, childID uuid.UUID, activityKey string) (string, error)
	UnlockForImage(dbc dbctx.Context, childID uuid.UUID, image string) (string, error)
	AttachBadge(ctx context.Context, childID uuid.UUID, name string)
	ListForAccount(ctx context.Context, includeLocked bool) ([]AchievementView, error)
}

type achievementService struct {
	db              *gorm.DB
	log             *logger.Logger
	childRepo       repos.ChildProfileRepo
	achievementRepo repos.AchievementRepo
	rules           *AchievementRules
	badges          BadgeService
	store           ContentStore
	now             func() time.Time
}

func NewAchievementService(
	db *gorm.DB,
	log *logger.Logger,
	childRepo repos.ChildProfileRepo,
	achievementRepo repos.AchievementRepo,
	rules *AchievementRules,
	badges BadgeService,
	store ContentStore,
) AchievementService {
	return &achievementService{
		db:              db,
		log:             log.With("service", "AchievementService"),
		childRepo:       childRepo,
		achievementRepo: achievementRepo,
		rules:           rules,
		badges:          badges,
		store:           store,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (as *achievementService) SeedStarter(dbc dbctx.Context, childID uuid.UUID) error {
	if as.rules == nil || len(as.rules.Starter) == 0 {
		return nil
	}
	rows := make([]*types.Achievement, 0, len(as.rules.Starter))
	for _, s := range as.rules.Starter {
		rows = append(rows, &types.Achievement{
			ChildID:     childID,
			Name:        s.Name,
			Description: s.Description,
		})
	}
	if err := as.achievementRepo.SeedIfAbsent(dbc, rows); err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	return nil
}

// Evaluate unlocks the achievement mapped to activityKey. It returns the name
// of the achievement when this call unlocked it, and "" otherwise.
func (as *achievementService) Evaluate(dbc dbctx.Context, childID uuid.UUID, activityKey string) (string, error) {
	name, ok := as.rules.ForActivity(activityKey)
	if !ok {
		return "", nil
	}
	unlocked, err := as.achievementRepo.Unlock(dbc, childID, name, nil, as.now())
	if err != nil {
		return "", fmt.Errorf("unlock %q: %w", name, err)
	}
	if !unlocked {
		return "", nil
	}
	observability.Current().IncAchievementUnlocked(name, unlockTriggerSession)
	as.log.Info("Achievement unlocked", "crianca_id", childID, "achievement", name, "activity", activityKey)
	return name, nil
}

// UnlockForImage unlocks the image achievement, using image as its picture.
func (as *achievementService) UnlockForImage(dbc dbctx.Context, childID uuid.UUID, image string) (string, error) {
	if as.rules == nil || as.rules.ImageAchievement == "" {
		return "", nil
	}
	name := as.rules.ImageAchievement
	unlocked, err := as.achievementRepo.Unlock(dbc, childID, name, &image, as.now())
	if err != nil {
		return "", fmt.Errorf("unlock %q: %w", name, err)
	}
	if !unlocked {
		return "", nil
	}
	observability.Current().IncAchievementUnlocked(name, unlockTriggerImage)
	as.log.Info("Achievement unlocked", "crianca_id", childID, "achievement", name, "trigger", unlockTriggerImage)
	return name, nil
}

// AttachBadge renders a badge for an achievement that has no image yet. It
// runs after the unlocking transaction commits; failures are only logged.
func (as *achievementService) AttachBadge(ctx context.Context, childID uuid.UUID, name string) {
	if as.badges == nil || name == "" {
		return
	}
	key, err := as.badges.CreateAndUpload(ctx, childID, name)
	if err != nil {
		as.log.Warn("badge render failed (ignored)", "crianca_id", childID, "achievement", name, "error", err)
		return
	}
	if err := as.achievementRepo.SetImageIfEmpty(dbctx.Context{Ctx: ctx}, childID, name, key); err != nil {
		as.log.Warn("badge attach failed (ignored)", "crianca_id", childID, "achievement", name, "error", err)
	}
}

func (as *achievementService) ListForAccount(ctx context.Context, includeLocked bool) ([]AchievementView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	child, err := actingChild(dbc, as.childRepo)
	if err != nil {
		return nil, err
	}
	rows, err := as.achievementRepo.ListByChild(dbc, child.ID, !includeLocked)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list achievements: %w", err))
	}
	out := make([]AchievementView, 0, len(rows))
	for _, a := range rows {
		v := AchievementView{
			Name:        a.Name,
			Description: a.Description,
			Unlocked:    a.Unlocked,
			Image:       a.Image,
			UnlockedAt:  a.UnlockedAt,
		}
		if a.Image != nil && *a.Image != "" && as.store != nil {
			v.ImageURL = as.store.GetPublicURL(*a.Image)
		}
		out = append(out, v)
	}
	return out, nil
}
