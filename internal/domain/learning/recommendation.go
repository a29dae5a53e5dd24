package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recommendation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;column:recomendacao_id" json:"recomendacao_id"`
	ChildID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recomendacao_crianca_atividade,priority:1;column:crianca_id" json:"crianca_id"`
	ActivityID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recomendacao_crianca_atividade,priority:2;column:atividade_id" json:"atividade_id"`
	Activity         *Activity `gorm:"foreignKey:ActivityID;references:ID" json:"atividade,omitempty"`
	Score            float64   `gorm:"not null;default:0;column:score" json:"score"`
	AlgorithmVersion string    `gorm:"not null;column:versao_algoritmo" json:"versao_algoritmo"`

	UpdatedAt time.Time `gorm:"column:atualizado_em" json:"atualizado_em"`
}

func (Recommendation) TableName() string { return "recomendacoes" }

func (r *Recommendation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
