package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/cache"
	"github.com/mundotea/mundotea-backend/internal/data/db"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

// DefaultActivities are the entries achievement rules expect to exist.
var DefaultActivities = []types.Activity{
	{Key: "colorir", Title: "Colorir", Category: "arte", Description: "Pintar desenhos livremente."},
	{Key: "quebra-cabeca", Title: "Quebra-Cabeça", Category: "cognitivo", Description: "Montar peças para formar uma imagem."},
	{Key: "jogo-da-memoria", Title: "Jogo da Memória", Category: "cognitivo", Description: "Encontrar pares de cartas iguais."},
}

type ActivityInput struct {
	Key              string          `json:"chave" validate:"omitempty,max=64"`
	Title            string          `json:"titulo" validate:"notblank,max=120"`
	Description      string          `json:"descricao" validate:"max=2000"`
	Category         string          `json:"categoria" validate:"max=64"`
	Difficulty       string          `json:"dificuldade" validate:"max=32"`
	EstimatedMinutes *int            `json:"tempo_estimado_min" validate:"omitempty,min=1,max=600"`
	Resources        json.RawMessage `json:"recursos"`
}

type ActivityCreated struct {
	ActivityID uuid.UUID `json:"atividade_id"`
	Key        string    `json:"chave"`
}

type CatalogService interface {
	Create(ctx context.Context, in ActivityInput) (*ActivityCreated, error)
	ListActive(ctx context.Context) ([]*types.Activity, error)
	EnsureDefaults(ctx context.Context) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	activityRepo repos.ActivityRepo
	cache        cache.CatalogCache
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, activityRepo repos.ActivityRepo, catalogCache cache.CatalogCache) CatalogService {
	if catalogCache == nil {
		catalogCache = cache.Noop{}
	}
	return &catalogService{
		db:           db,
		log:          log.With("service", "CatalogService"),
		activityRepo: activityRepo,
		cache:        catalogCache,
	}
}

// Create authors a catalog entry. The key is derived from the title when absent
// and never changes afterwards.
func (cs *catalogService) Create(ctx context.Context, in ActivityInput) (*ActivityCreated, error) {
	accountID, err := actingAccountID(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Key = strings.TrimSpace(in.Key)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	key := Slugify(in.Key)
	if key == "" {
		key = Slugify(in.Title)
	}
	if key == "" {
		return nil, apierr.Validation("chave inválida: não foi possível derivar de %q", in.Title)
	}
	if len(in.Resources) > 0 && !json.Valid(in.Resources) {
		return nil, apierr.Validation("recursos deve ser JSON válido")
	}

	activity := &types.Activity{
		Key:              key,
		Title:            in.Title,
		Description:      strings.TrimSpace(in.Description),
		Category:         strings.TrimSpace(in.Category),
		Difficulty:       strings.TrimSpace(in.Difficulty),
		EstimatedMinutes: in.EstimatedMinutes,
		Active:           true,
		CreatedBy:        &accountID,
	}
	if len(in.Resources) > 0 {
		activity.Resources = datatypes.JSON(in.Resources)
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := cs.activityRepo.KeyExists(dbc, key)
		if err != nil {
			return apierr.Internal(fmt.Errorf("check activity key: %w", err))
		}
		if exists {
			return apierr.Validation("chave já existe: %s", key)
		}
		if err := cs.activityRepo.Create(dbc, activity); err != nil {
			if db.IsUniqueViolation(err) {
				return apierr.Validation("chave já existe: %s", key)
			}
			return apierr.Internal(fmt.Errorf("create activity: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.invalidate(ctx)
	cs.log.Info("Activity created", "atividade_id", activity.ID, "chave", key, "criado_por", accountID)
	return &ActivityCreated{ActivityID: activity.ID, Key: key}, nil
}

func (cs *catalogService) ListActive(ctx context.Context) ([]*types.Activity, error) {
	metrics := observability.Current()
	cached, ok, err := cs.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.IncCatalogCache("error")
		cs.log.Warn("catalog cache read failed", "error", err)
	case ok:
		metrics.IncCatalogCache("hit")
		return cached, nil
	default:
		metrics.IncCatalogCache("miss")
	}

	activities, err := cs.activityRepo.ListActive(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list activities: %w", err))
	}
	if activities == nil {
		activities = []*types.Activity{}
	}
	if err := cs.cache.Set(ctx, activities); err != nil {
		cs.log.Warn("catalog cache write failed", "error", err)
	}
	return activities, nil
}

// EnsureDefaults inserts the built-in activities that are missing.
func (cs *catalogService) EnsureDefaults(ctx context.Context) error {
	rows := make([]*types.Activity, 0, len(DefaultActivities))
	for i := range DefaultActivities {
		a := DefaultActivities[i]
		a.Active = true
		rows = append(rows, &a)
	}
	n, err := cs.activityRepo.CreateIfAbsent(dbctx.Context{Ctx: ctx}, rows)
	if err != nil {
		return fmt.Errorf("seed default activities: %w", err)
	}
	if n > 0 {
		cs.log.Info("Seeded default activities", "count", n)
		cs.invalidate(ctx)
	}
	return nil
}

func (cs *catalogService) invalidate(ctx context.Context) {
	if err := cs.cache.Invalidate(ctx); err != nil {
		cs.log.Warn("catalog cache invalidation failed", "error", err)
	}
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify lowercases s, strips accents and joins alphanumeric runs with '-'.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
