package learning

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, activity *types.Activity) error
	CreateIfAbsent(dbc dbctx.Context, activities []*types.Activity) (int64, error)
	GetByID(dbc dbctx.Context, activityID uuid.UUID) (*types.Activity, error)
	KeyExists(dbc dbctx.Context, key string) (bool, error)
	ListActive(dbc dbctx.Context) ([]*types.Activity, error)
	ListAllIDs(dbc dbctx.Context) ([]uuid.UUID, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, activity *types.Activity) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if activity == nil {
		return errors.New("nil activity")
	}
	return t.WithContext(dbc.Ctx).Create(activity).Error
}

// CreateIfAbsent inserts catalog rows whose key is not taken yet.
func (r *activityRepo) CreateIfAbsent(dbc dbctx.Context, activities []*types.Activity) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(activities) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chave"}},
			DoNothing: true,
		}).
		Create(&activities)
	return res.RowsAffected, res.Error
}

func (r *activityRepo) GetByID(dbc dbctx.Context, activityID uuid.UUID) (*types.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if activityID == uuid.Nil {
		return nil, nil
	}
	var row types.Activity
	if err := t.WithContext(dbc.Ctx).Where("atividade_id = ?", activityID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *activityRepo) KeyExists(dbc dbctx.Context, key string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Activity{}).
		Where("chave = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepo) ListActive(dbc dbctx.Context) ([]*types.Activity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Activity{}
	if err := t.WithContext(dbc.Ctx).
		Where("ativo = ?", true).
		Order("criado_em ASC").
		Order("chave ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) ListAllIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Activity{}).
		Order("criado_em ASC").
		Pluck("atividade_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
