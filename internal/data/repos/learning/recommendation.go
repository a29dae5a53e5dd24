package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type RecommendationRepo interface {
	CreateIfAbsent(dbc dbctx.Context, rows []*types.Recommendation) error
	ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Recommendation, error)
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return &recommendationRepo{db: db, log: baseLog.With("repo", "RecommendationRepo")}
}

func (r *recommendationRepo) CreateIfAbsent(dbc dbctx.Context, rows []*types.Recommendation) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "crianca_id"}, {Name: "atividade_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *recommendationRepo) ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Recommendation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Recommendation{}
	if childID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Activity").
		Where("crianca_id = ?", childID).
		Order("score DESC").
		Order("atualizado_em ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
