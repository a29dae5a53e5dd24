package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type AchievementRepo interface {
	SeedIfAbsent(dbc dbctx.Context, rows []*types.Achievement) error
	Unlock(dbc dbctx.Context, childID uuid.UUID, name string, image *string, at time.Time) (bool, error)
	SetImageIfEmpty(dbc dbctx.Context, childID uuid.UUID, name, image string) error
	ListByChild(dbc dbctx.Context, childID uuid.UUID, unlockedOnly bool) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) SeedIfAbsent(dbc dbctx.Context, rows []*types.Achievement) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "crianca_id"}, {Name: "nome"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

// Unlock flips a locked achievement and reports whether this call did it.
// Already unlocked or unknown achievements return false.
func (r *achievementRepo) Unlock(dbc dbctx.Context, childID uuid.UUID, name string, image *string, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]any{
		"desbloqueada":    true,
		"desbloqueada_em": at,
	}
	if image != nil {
		updates["imagem"] = *image
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Achievement{}).
		Where("crianca_id = ? AND nome = ? AND desbloqueada = ?", childID, name, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *achievementRepo) SetImageIfEmpty(dbc dbctx.Context, childID uuid.UUID, name, image string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Achievement{}).
		Where("crianca_id = ? AND nome = ? AND imagem IS NULL", childID, name).
		Update("imagem", image).Error
}

func (r *achievementRepo) ListByChild(dbc dbctx.Context, childID uuid.UUID, unlockedOnly bool) ([]*types.Achievement, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Achievement{}
	if childID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("crianca_id = ?", childID)
	if unlockedOnly {
		q = q.Where("desbloqueada = ?", true)
	}
	if err := q.Order("criado_em ASC").Order("nome ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
