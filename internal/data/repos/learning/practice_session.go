package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/mundotea/mundotea-backend/internal/domain"
	"github.com/mundotea/mundotea-backend/internal/platform/dbctx"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

// SessionOutcome holds the terminal fields written when a session completes.
type SessionOutcome struct {
	EndedAt        time.Time
	ElapsedSeconds int
	Score          float64
	Accuracy       float64
}

type PracticeSessionRepo interface {
	Create(dbc dbctx.Context, session *types.PracticeSession) error
	GetForChild(dbc dbctx.Context, sessionID, childID uuid.UUID) (*types.PracticeSession, error)
	CompleteOpen(dbc dbctx.Context, sessionID, childID uuid.UUID, outcome SessionOutcome) (int64, error)
	SetImage(dbc dbctx.Context, sessionID uuid.UUID, image string) error
}

type practiceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) PracticeSessionRepo {
	return &practiceSessionRepo{db: db, log: baseLog.With("repo", "PracticeSessionRepo")}
}

func (r *practiceSessionRepo) Create(dbc dbctx.Context, session *types.PracticeSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if session == nil {
		return errors.New("nil session")
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(session).Error
}

// GetForChild scopes the lookup to the owning child; another child's session
// is reported as missing.
func (r *practiceSessionRepo) GetForChild(dbc dbctx.Context, sessionID, childID uuid.UUID) (*types.PracticeSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if sessionID == uuid.Nil || childID == uuid.Nil {
		return nil, nil
	}
	var row types.PracticeSession
	if err := t.WithContext(dbc.Ctx).
		Where("sessao_id = ? AND crianca_id = ?", sessionID, childID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// CompleteOpen only touches a session that is still open, so concurrent
// completions yield exactly one affected row.
func (r *practiceSessionRepo) CompleteOpen(dbc dbctx.Context, sessionID, childID uuid.UUID, outcome SessionOutcome) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.PracticeSession{}).
		Where("sessao_id = ? AND crianca_id = ? AND data_fim IS NULL", sessionID, childID).
		Updates(map[string]any{
			"data_fim":             outcome.EndedAt,
			"tempo_gasto_segundos": outcome.ElapsedSeconds,
			"score":                outcome.Score,
			"acuracia":             outcome.Accuracy,
		})
	return res.RowsAffected, res.Error
}

func (r *practiceSessionRepo) SetImage(dbc dbctx.Context, sessionID uuid.UUID, image string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.PracticeSession{}).
		Where("sessao_id = ?", sessionID).
		Update("imagem", image).Error
}
