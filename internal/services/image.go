package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/repos"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
	"github.com/mundotea/mundotea-backend/internal/platform/validate"
)

// MaxImageBytes caps the decoded upload size.
const MaxImageBytes = 10 << 20

var imageExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"gif":  "gif",
	"webp": "webp",
}

type ImageInput struct {
	SessionID string `json:"sessao_id" validate:"notblank,uuid"`
	Image     string `json:"imagem" validate:"notblank"`
}

type ImageResult struct {
	File string `json:"arquivo"`
	URL  string `json:"url"`
}

type ImageService interface {
	Submit(ctx context.Context, in ImageInput) (*ImageResult, error)
}

type imageService struct {
	db           *gorm.DB
	log          *logger.Logger
	childRepo    repos.ChildProfileRepo
	sessionRepo  repos.PracticeSessionRepo
	achievements AchievementService
	store        ContentStore
}

func NewImageService(
	db *gorm.DB,
	log *logger.Logger,
	childRepo repos.ChildProfileRepo,
	sessionRepo repos.PracticeSessionRepo,
	achievements AchievementService,
	store ContentStore,
) ImageService {
	return &imageService{
		db:           db,
		log:          log.With("service", "ImageService"),
		childRepo:    childRepo,
		sessionRepo:  sessionRepo,
		achievements: achievements,
		store:        store,
	}
}

// Submit stores a session drawing and unlocks the image achievement for the
// session's child, whichever activity the session belongs to.
func (is *imageService) Submit(ctx context.Context, in ImageInput) (*ImageResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	sessionID, err := uuid.Parse(in.SessionID)
	if err != nil {
		return nil, apierr.Validation("identificador inválido: sessao_id")
	}
	raw, format, err := DecodeImagePayload(in.Image)
	if err != nil {
		observability.Current().IncImageUpload("unknown", "rejected")
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	child, err := actingChild(dbc, is.childRepo)
	if err != nil {
		return nil, err
	}
	session, err := is.sessionRepo.GetForChild(dbc, sessionID, child.ID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load session: %w", err))
	}
	if session == nil {
		return nil, apierr.NotFound("sessão não encontrada")
	}

	file := uuid.NewString() + "." + imageExtensions[format]
	if err := is.store.UploadFile(ctx, file, bytes.NewReader(raw)); err != nil {
		observability.Current().IncImageUpload(format, "failed")
		return nil, apierr.Internal(fmt.Errorf("store image: %w", err))
	}

	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := is.sessionRepo.SetImage(txc, session.ID, file); err != nil {
			return fmt.Errorf("record image: %w", err)
		}
		if _, err := is.achievements.UnlockForImage(txc, child.ID, file); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// The row never references the file, so drop it.
		if delErr := is.store.DeleteFile(ctx, file); delErr != nil {
			is.log.Warn("orphan image cleanup failed", "arquivo", file, "error", delErr)
		}
		observability.Current().IncImageUpload(format, "failed")
		return nil, apierr.Internal(err)
	}

	observability.Current().IncImageUpload(format, "stored")
	is.log.Info("Session image stored", "sessao_id", session.ID, "arquivo", file, "bytes", len(raw))
	return &ImageResult{File: file, URL: is.store.GetPublicURL(file)}, nil
}

// DecodeImagePayload accepts plain base64 or a data URL and returns the bytes
// with the sniffed format (png, jpeg, gif or webp).
func DecodeImagePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, "", apierr.Validation("data URL inválida: imagem")
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, "", apierr.Validation("campo obrigatório: imagem")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, "", apierr.Validation("imagem excede o tamanho máximo (%d bytes)", MaxImageBytes)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, "", apierr.Validation("base64 inválido: imagem")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", apierr.Validation("formato de imagem não suportado")
	}
	if _, ok := imageExtensions[format]; !ok {
		return nil, "", apierr.Validation("formato de imagem não suportado: %s", format)
	}
	return raw, format, nil
}
