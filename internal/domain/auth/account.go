package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a login credential pair. Accounts are never deleted; deactivation
// flips Active and makes authentication fail.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:login_id" json:"login_id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:senha_hash" json:"-"`
	Active       bool      `gorm:"not null;default:true;column:ativo" json:"ativo"`

	CreatedAt time.Time `gorm:"column:criado_em" json:"criado_em"`
	UpdatedAt time.Time `gorm:"column:atualizado_em" json:"atualizado_em"`
}

func (Account) TableName() string { return "login" }

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
