package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionOpen      SessionStatus = "aberta"
	SessionCompleted SessionStatus = "concluida"
)

// PracticeSession is one timed attempt at an Activity. It is created open and
// completed exactly once; sessions are never deleted.
type PracticeSession struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;column:sessao_id" json:"sessao_id"`
	ChildID    uuid.UUID `gorm:"type:uuid;not null;index;column:crianca_id" json:"crianca_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;index;column:atividade_id" json:"atividade_id"`

	StartedAt      time.Time  `gorm:"not null;column:data_inicio" json:"data_inicio"`
	EndedAt        *time.Time `gorm:"column:data_fim" json:"data_fim,omitempty"`
	ElapsedSeconds *int       `gorm:"column:tempo_gasto_segundos" json:"tempo_gasto_segundos,omitempty"`
	Score          *float64   `gorm:"column:score" json:"score,omitempty"`
	Accuracy       *float64   `gorm:"column:acuracia" json:"acuracia,omitempty"`
	Image          *string    `gorm:"column:imagem" json:"imagem,omitempty"`
}

func (PracticeSession) TableName() string { return "sessoes" }

func (s *PracticeSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *PracticeSession) Status() SessionStatus {
	if s == nil || s.EndedAt == nil {
		return SessionOpen
	}
	return SessionCompleted
}
