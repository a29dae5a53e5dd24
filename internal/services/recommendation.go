package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

const RecommendationAlgorithmVersion = "v1"

type RecommendationView struct {
	ActivityID       uuid.UUID `json:"atividade_id"`
	ActivityKey      string    `json:"chave,omitempty"`
	Title            string    `json:"titulo,omitempty"`
	Score            float64   `json:"score"`
	AlgorithmVersion string    `json:"versao_algoritmo"`
}

type RecommendationService interface {
	SeedForChild(dbc dbctx.Context, childID uuid.UUID) error
	ListForAccount(ctx context.Context) ([]RecommendationView, error)
}

type recommendationService struct {
	db           *gorm.DB
	log          *logger.Logger
	childRepo    repos.ChildProfileRepo
	activityRepo repos.ActivityRepo
	recRepo      repos.RecommendationRepo
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	childRepo repos.ChildProfileRepo,
	activityRepo repos.ActivityRepo,
	recRepo repos.RecommendationRepo,
) RecommendationService {
	return &recommendationService{
		db:           db,
		log:          log.With("service", "RecommendationService"),
		childRepo:    childRepo,
		activityRepo: activityRepo,
		recRepo:      recRepo,
	}
}

// SeedForChild writes a zero-score row for every catalog activity.
func (rs *recommendationService) SeedForChild(dbc dbctx.Context, childID uuid.UUID) error {
	ids, err := rs.activityRepo.ListAllIDs(dbc)
	if err != nil {
		return fmt.Errorf("list activities: %w", err)
	}
	rows := make([]*types.Recommendation, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, &types.Recommendation{
			ChildID:          childID,
			ActivityID:       id,
			Score:            0,
			AlgorithmVersion: RecommendationAlgorithmVersion,
		})
	}
	if err := rs.recRepo.CreateIfAbsent(dbc, rows); err != nil {
		return fmt.Errorf("seed recommendations: %w", err)
	}
	return nil
}

func (rs *recommendationService) ListForAccount(ctx context.Context) ([]RecommendationView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	child, err := actingChild(dbc, rs.childRepo)
	if err != nil {
		return nil, err
	}
	rows, err := rs.recRepo.ListByChild(dbc, child.ID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list recommendations: %w", err))
	}
	out := make([]RecommendationView, 0, len(rows))
	for _, r := range rows {
		v := RecommendationView{
			ActivityID:       r.ActivityID,
			Score:            r.Score,
			AlgorithmVersion: r.AlgorithmVersion,
		}
		if r.Activity != nil {
			v.ActivityKey = r.Activity.Key
			v.Title = r.Activity.Title
		}
		out = append(out, v)
	}
	return out, nil
}
