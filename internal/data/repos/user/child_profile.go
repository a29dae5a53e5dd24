package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type ChildProfileRepo interface {
	Create(dbc dbctx.Context, profile *types.ChildProfile) error
	GetByAccountID(dbc dbctx.Context, accountID uuid.UUID) (*types.ChildProfile, error)
	ReplaceFields(dbc dbctx.Context, accountID uuid.UUID, profile *types.ChildProfile) (int64, error)
}

type childProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildProfileRepo(db *gorm.DB, baseLog *logger.Logger) ChildProfileRepo {
	return &childProfileRepo{db: db, log: baseLog.With("repo", "ChildProfileRepo")}
}

func (r *childProfileRepo) Create(dbc dbctx.Context, profile *types.ChildProfile) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if profile == nil || profile.AccountID == uuid.Nil {
		return errors.New("profile requires an owning account")
	}
	return t.WithContext(dbc.Ctx).Create(profile).Error
}

// GetByAccountID returns nil, nil when the account has no profile.
func (r *childProfileRepo) GetByAccountID(dbc dbctx.Context, accountID uuid.UUID) (*types.ChildProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if accountID == uuid.Nil {
		return nil, nil
	}
	var row types.ChildProfile
	if err := t.WithContext(dbc.Ctx).Where("login_id = ?", accountID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ReplaceFields overwrites every mutable column and reports the affected rows.
func (r *childProfileRepo) ReplaceFields(dbc dbctx.Context, accountID uuid.UUID, profile *types.ChildProfile) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ChildProfile{}).
		Where("login_id = ?", accountID).
		Updates(map[string]any{
			"nome":                 profile.Name,
			"data_nascimento":      profile.BirthDate,
			"nivel_autismo":        profile.AutismLevel,
			"nome_pai":             profile.FatherName,
			"nome_mae":             profile.MotherName,
			"telefone_responsavel": profile.GuardianPhone,
			"email_responsavel":    profile.GuardianEmail,
			"necessidades":         profile.Needs,
		})
	return res.RowsAffected, res.Error
}
