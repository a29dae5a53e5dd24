package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

type AccountRepo interface {
	Create(dbc dbctx.Context, account *types.Account) error
	GetByID(dbc dbctx.Context, accountID uuid.UUID) (*types.Account, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Account, error)
	EmailExists(dbc dbctx.Context, email string) (bool, error)
	SetActive(dbc dbctx.Context, accountID uuid.UUID, active bool) (int64, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (r *accountRepo) Create(dbc dbctx.Context, account *types.Account) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if account == nil {
		return errors.New("nil account")
	}
	account.Email = normalizeEmail(account.Email)
	return transaction.WithContext(dbc.Ctx).Create(account).Error
}

// GetByID returns nil, nil when the account does not exist.
func (r *accountRepo) GetByID(dbc dbctx.Context, accountID uuid.UUID) (*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if accountID == uuid.Nil {
		return nil, nil
	}
	var row types.Account
	if err := transaction.WithContext(dbc.Ctx).
		Where("login_id = ?", accountID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetByEmail returns nil, nil when no account uses the email.
func (r *accountRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var row types.Account
	if err := transaction.WithContext(dbc.Ctx).
		Where("email = ?", email).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *accountRepo) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Account{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountRepo) SetActive(dbc dbctx.Context, accountID uuid.UUID, active bool) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Account{}).
		Where("login_id = ?", accountID).
		Update("ativo", active)
	return res.RowsAffected, res.Error
}

// Emails are stored trimmed and lower-cased so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
