package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

const birthDateLayout = "2006-01-02"

// ProfileInput carries every mutable child profile field. Updates replace all
// of them; only Needs may be omitted.
type ProfileInput struct {
	ChildName     string  `json:"nome_crianca" validate:"notblank,max=120"`
	BirthDate     string  `json:"data_nascimento" validate:"notblank,datetime=2006-01-02"`
	AutismLevel   *int    `json:"nivel_autismo" validate:"required,min=1,max=3"`
	FatherName    string  `json:"pai" validate:"notblank,max=120"`
	MotherName    string  `json:"mae" validate:"notblank,max=120"`
	GuardianPhone string  `json:"telefone_resp" validate:"notblank,max=32"`
	GuardianEmail string  `json:"email_resp" validate:"notblank,email,max=254"`
	Needs         *string `json:"necessidades,omitempty" validate:"omitempty,max=2000"`
}

func (in *ProfileInput) normalize() {
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.FatherName = strings.TrimSpace(in.FatherName)
	in.MotherName = strings.TrimSpace(in.MotherName)
	in.GuardianPhone = strings.TrimSpace(in.GuardianPhone)
	in.GuardianEmail = strings.ToLower(strings.TrimSpace(in.GuardianEmail))
	if in.Needs != nil {
		needs := strings.TrimSpace(*in.Needs)
		if needs == "" {
			in.Needs = nil
		} else {
			in.Needs = &needs
		}
	}
}

// toProfile validates in and maps it onto a ChildProfile.
func (in ProfileInput) toProfile(now time.Time) (*types.ChildProfile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	birth, err := time.Parse(birthDateLayout, in.BirthDate)
	if err != nil {
		return nil, apierr.Validation("data inválida (use %s): data_nascimento", birthDateLayout)
	}
	if birth.After(now) {
		return nil, apierr.Validation("data_nascimento não pode estar no futuro")
	}
	return &types.ChildProfile{
		Name:          in.ChildName,
		BirthDate:     birth,
		AutismLevel:   *in.AutismLevel,
		FatherName:    in.FatherName,
		MotherName:    in.MotherName,
		GuardianPhone: in.GuardianPhone,
		GuardianEmail: in.GuardianEmail,
		Needs:         in.Needs,
	}, nil
}

// ProfileView is the profile as returned to clients.
type ProfileView struct {
	ChildID       uuid.UUID `json:"crianca_id"`
	AccountID     uuid.UUID `json:"login_id"`
	ChildName     string    `json:"nome_crianca"`
	BirthDate     string    `json:"data_nascimento"`
	AutismLevel   int       `json:"nivel_autismo"`
	FatherName    string    `json:"pai"`
	MotherName    string    `json:"mae"`
	GuardianPhone string    `json:"telefone_resp"`
	GuardianEmail string    `json:"email_resp"`
	Needs         *string   `json:"necessidades,omitempty"`
	UpdatedAt     time.Time `json:"atualizado_em"`
}

func NewProfileView(p *types.ChildProfile) ProfileView {
	return ProfileView{
		ChildID:       p.ID,
		AccountID:     p.AccountID,
		ChildName:     p.Name,
		BirthDate:     p.BirthDate.Format(birthDateLayout),
		AutismLevel:   p.AutismLevel,
		FatherName:    p.FatherName,
		MotherName:    p.MotherName,
		GuardianPhone: p.GuardianPhone,
		GuardianEmail: p.GuardianEmail,
		Needs:         p.Needs,
		UpdatedAt:     p.UpdatedAt,
	}
}

type ProfileService interface {
	Get(ctx context.Context) (*ProfileView, error)
	Update(ctx context.Context, in ProfileInput) (*ProfileView, error)
}

type profileService struct {
	db        *gorm.DB
	log       *logger.Logger
	childRepo repos.ChildProfileRepo
	now       func() time.Time
}

func NewProfileService(db *gorm.DB, log *logger.Logger, childRepo repos.ChildProfileRepo) ProfileService {
	return &profileService{
		db:        db,
		log:       log.With("service", "ProfileService"),
		childRepo: childRepo,
		now:       time.Now,
	}
}

func (ps *profileService) Get(ctx context.Context) (*ProfileView, error) {
	child, err := actingChild(dbctx.Context{Ctx: ctx}, ps.childRepo)
	if err != nil {
		return nil, err
	}
	v := NewProfileView(child)
	return &v, nil
}

// Update replaces every mutable field. Concurrent updates are last-writer-wins.
func (ps *profileService) Update(ctx context.Context, in ProfileInput) (*ProfileView, error) {
	accountID, err := actingAccountID(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	in.normalize()
	profile, err := in.toProfile(ps.now())
	if err != nil {
		return nil, err
	}

	var updated *types.ChildProfile
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		n, err := ps.childRepo.ReplaceFields(dbc, accountID, profile)
		if err != nil {
			return apierr.Internal(fmt.Errorf("update profile: %w", err))
		}
		if n == 0 {
			return apierr.NotFound("perfil não encontrado")
		}
		updated, err = ps.childRepo.GetByAccountID(dbc, accountID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("reload profile: %w", err))
		}
		if updated == nil {
			return apierr.NotFound("perfil não encontrado")
		}
		return nil
	})
	if err != nil {
		ps.log.Warn("profile update failed", "login_id", accountID, "error", err)
		return nil, err
	}
	v := NewProfileView(updated)
	return &v, nil
}
