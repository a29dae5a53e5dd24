package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type PreferenceRepo interface {
	ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Preference, error)
	Upsert(dbc dbctx.Context, rows []*types.Preference) error
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

func (r *preferenceRepo) ListByChild(dbc dbctx.Context, childID uuid.UUID) ([]*types.Preference, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Preference
	if childID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("crianca_id = ?", childID).
		Order("chave ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *preferenceRepo) Upsert(dbc dbctx.Context, rows []*types.Preference) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		row.UpdatedAt = now
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "crianca_id"}, {Name: "chave"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"valor",
				"atualizado_em",
			}),
		}).
		Create(&rows).Error
}
