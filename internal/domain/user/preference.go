package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preference is a per-child key/value setting; (crianca_id, chave) is unique.
type Preference struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;column:preferencia_id" json:"preferencia_id"`
	ChildID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_preferencia_crianca_chave,priority:1;column:crianca_id" json:"crianca_id"`
	Key     string    `gorm:"not null;uniqueIndex:idx_preferencia_crianca_chave,priority:2;column:chave" json:"chave"`
	Value   string    `gorm:"not null;column:valor" json:"valor"`

	UpdatedAt time.Time `gorm:"column:atualizado_em" json:"atualizado_em"`
}

func (Preference) TableName() string { return "preferencias" }

func (p *Preference) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
