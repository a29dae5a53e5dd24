package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

// DefaultPreferences are written for every child at registration.
var DefaultPreferences = map[string]string{
	"som":           "ligado",
	"tema":          "claro",
	"tamanho_fonte": "medio",
	"animacoes":     "ligado",
}

type PreferenceInput struct {
	Key   string `json:"chave" validate:"notblank,max=64"`
	Value string `json:"valor" validate:"notblank,max=256"`
}

type PreferenceService interface {
	SeedDefaults(dbc dbctx.Context, childID uuid.UUID) error
	List(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, in PreferenceInput) (map[string]string, error)
}

type preferenceService struct {
	db        *gorm.DB
	log       *logger.Logger
	childRepo repos.ChildProfileRepo
	prefRepo  repos.PreferenceRepo
}

func NewPreferenceService(db *gorm.DB, log *logger.Logger, childRepo repos.ChildProfileRepo, prefRepo repos.PreferenceRepo) PreferenceService {
	return &preferenceService{
		db:        db,
		log:       log.With("service", "PreferenceService"),
		childRepo: childRepo,
		prefRepo:  prefRepo,
	}
}

func (ps *preferenceService) SeedDefaults(dbc dbctx.Context, childID uuid.UUID) error {
	rows := make([]*types.Preference, 0, len(DefaultPreferences))
	for k, v := range DefaultPreferences {
		rows = append(rows, &types.Preference{ChildID: childID, Key: k, Value: v})
	}
	if err := ps.prefRepo.Upsert(dbc, rows); err != nil {
		return fmt.Errorf("seed preferences: %w", err)
	}
	return nil
}

func (ps *preferenceService) List(ctx context.Context) (map[string]string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	child, err := actingChild(dbc, ps.childRepo)
	if err != nil {
		return nil, err
	}
	return ps.list(dbc, child.ID)
}

func (ps *preferenceService) Set(ctx context.Context, in PreferenceInput) (map[string]string, error) {
	in.Key = strings.ToLower(strings.TrimSpace(in.Key))
	in.Value = strings.TrimSpace(in.Value)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	var out map[string]string
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		child, err := actingChild(dbc, ps.childRepo)
		if err != nil {
			return err
		}
		if err := ps.prefRepo.Upsert(dbc, []*types.Preference{{ChildID: child.ID, Key: in.Key, Value: in.Value}}); err != nil {
			return apierr.Internal(fmt.Errorf("upsert preference: %w", err))
		}
		out, err = ps.list(dbc, child.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *preferenceService) list(dbc dbctx.Context, childID uuid.UUID) (map[string]string, error) {
	rows, err := ps.prefRepo.ListByChild(dbc, childID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list preferences: %w", err))
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}
