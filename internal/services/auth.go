package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/db"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"notblank,email,max=254"`
	Password string `json:"senha" validate:"notblank,max=72"`
	ProfileInput
}

type RegisterResult struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"login_id"`
	ChildID   uuid.UUID `json:"crianca_id"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"senha" validate:"notblank"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"login_id"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Authenticate(ctx context.Context, email, password string) (uuid.UUID, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	SetActive(ctx context.Context, email string, active bool) error
}

type authService struct {
	db              *gorm.DB
	log             *logger.Logger
	accountRepo     repos.AccountRepo
	childRepo       repos.ChildProfileRepo
	achievements    AchievementService
	preferences     PreferenceService
	recommendations RecommendationService
	tokens          TokenService
	bcryptCost      int
	now             func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.AccountRepo,
	childRepo repos.ChildProfileRepo,
	achievements AchievementService,
	preferences PreferenceService,
	recommendations RecommendationService,
	tokens TokenService,
	bcryptCost int,
) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		db:              db,
		log:             log.With("service", "AuthService"),
		accountRepo:     accountRepo,
		childRepo:       childRepo,
		achievements:    achievements,
		preferences:     preferences,
		recommendations: recommendations,
		tokens:          tokens,
		bcryptCost:      bcryptCost,
		now:             time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account, its child profile and every seeded row in one
// transaction, then issues a token.
func (as *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Var("email", in.Email, "notblank,email,max=254"); err != nil {
		return nil, err
	}
	// A taken email wins over any other invalid field. The check inside the
	// transaction and the unique index still cover concurrent registrations.
	exists, err := as.accountRepo.EmailExists(dbctx.Context{Ctx: ctx}, in.Email)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apierr.DuplicateEmail()
	}

	in.ProfileInput.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	profile, err := in.ProfileInput.toProfile(as.now())
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), as.bcryptCost)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("hash password: %w", err))
	}

	account := &types.Account{
		Email:        in.Email,
		PasswordHash: string(hash),
		Active:       true,
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.accountRepo.EmailExists(dbc, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.DuplicateEmail()
		}
		if err := as.accountRepo.Create(dbc, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		profile.AccountID = account.ID
		if err := as.childRepo.Create(dbc, profile); err != nil {
			return fmt.Errorf("create child profile: %w", err)
		}
		if err := as.achievements.SeedStarter(dbc, profile.ID); err != nil {
			return err
		}
		if err := as.preferences.SeedDefaults(dbc, profile.ID); err != nil {
			return err
		}
		return as.recommendations.SeedForChild(dbc, profile.ID)
	})
	if err != nil {
		var apiErr *apierr.Error
		switch {
		case errors.As(err, &apiErr):
			return nil, apiErr
		case db.IsUniqueViolation(err):
			return nil, apierr.DuplicateEmail()
		default:
			as.log.Error("registration failed", "error", err)
			return nil, apierr.Internal(fmt.Errorf("erro ao registrar: %w", err))
		}
	}

	token, err := as.tokens.Issue(account.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	observability.Current().IncRegistration()
	as.log.Info("Account registered", "login_id", account.ID, "crianca_id", profile.ID)
	return &RegisterResult{Token: token, AccountID: account.ID, ChildID: profile.ID}, nil
}

func (as *authService) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	in := LoginInput{Email: normalizeEmail(email), Password: password}
	if err := validate.Struct(in); err != nil {
		return uuid.Nil, err
	}
	account, err := as.accountRepo.GetByEmail(dbctx.Context{Ctx: ctx}, in.Email)
	if err != nil {
		return uuid.Nil, apierr.Internal(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return uuid.Nil, apierr.NotFound("usuário não encontrado")
	}
	if !account.Active {
		return uuid.Nil, apierr.Forbidden("conta desativada")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return uuid.Nil, apierr.InvalidCredentials()
	}
	return account.ID, nil
}

func (as *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	accountID, err := as.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	token, err := as.tokens.Issue(accountID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return &LoginResult{Token: token, AccountID: accountID}, nil
}

func (as *authService) SetActive(ctx context.Context, email string, active bool) error {
	email = normalizeEmail(email)
	if err := validate.Var("email", email, "notblank,email"); err != nil {
		return err
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		account, err := as.accountRepo.GetByEmail(dbc, email)
		if err != nil {
			return apierr.Internal(fmt.Errorf("load account: %w", err))
		}
		if account == nil {
			return apierr.NotFound("usuário não encontrado")
		}
		if _, err := as.accountRepo.SetActive(dbc, account.ID, active); err != nil {
			return apierr.Internal(fmt.Errorf("set active: %w", err))
		}
		as.log.Info("Account active flag changed", "login_id", account.ID, "ativo", active)
		return nil
	})
}
