package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement is a named milestone flag; (crianca_id, nome) is unique.
type Achievement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:conquista_id" json:"conquista_id"`
	ChildID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conquista_crianca_nome,priority:1;column:crianca_id" json:"crianca_id"`
	Name        string     `gorm:"not null;uniqueIndex:idx_conquista_crianca_nome,priority:2;column:nome" json:"nome"`
	Description string     `gorm:"type:text;column:descricao" json:"descricao,omitempty"`
	Unlocked    bool       `gorm:"not null;default:false;column:desbloqueada" json:"desbloqueada"`
	Image       *string    `gorm:"column:imagem" json:"imagem,omitempty"`
	UnlockedAt  *time.Time `gorm:"column:desbloqueada_em" json:"desbloqueada_em,omitempty"`

	CreatedAt time.Time `gorm:"column:criado_em" json:"criado_em"`
}

func (Achievement) TableName() string { return "conquistas" }

func (a *Achievement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
