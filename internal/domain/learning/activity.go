package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is a global catalog entry. Key is the stable identifier achievement
// rules refer to; Title is display-only.
type Activity struct {
	ID  uuid.UUID `gorm:"type:uuid;primaryKey;column:atividade_id" json:"atividade_id"`
	Key string    `gorm:"not null;uniqueIndex;column:chave" json:"chave"`

	Title            string         `gorm:"not null;column:titulo" json:"titulo"`
	Description      string         `gorm:"type:text;column:descricao" json:"descricao,omitempty"`
	Category         string         `gorm:"column:categoria;index" json:"categoria,omitempty"`
	Difficulty       string         `gorm:"column:dificuldade" json:"dificuldade,omitempty"`
	EstimatedMinutes *int           `gorm:"column:tempo_estimado_min" json:"tempo_estimado_min,omitempty"`
	Resources        datatypes.JSON `gorm:"type:jsonb;column:recursos" json:"recursos,omitempty"`
	Active           bool           `gorm:"not null;default:true;column:ativo;index" json:"ativo"`
	CreatedBy        *uuid.UUID     `gorm:"type:uuid;column:criado_por" json:"criado_por,omitempty"`

	CreatedAt time.Time `gorm:"column:criado_em;index" json:"criado_em"`
	UpdatedAt time.Time `gorm:"column:atualizado_em" json:"atualizado_em"`
}

func (Activity) TableName() string { return "atividades" }

func (a *Activity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
