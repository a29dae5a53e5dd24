package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/domain/auth"
)

// ChildProfile is the therapy subject owned by exactly one Account.
type ChildProfile struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;column:crianca_id" json:"crianca_id"`
	AccountID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex;column:login_id" json:"login_id"`
	Account   *auth.Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Name          string    `gorm:"not null;column:nome" json:"nome"`
	BirthDate     time.Time `gorm:"type:date;not null;column:data_nascimento" json:"data_nascimento"`
	AutismLevel   int       `gorm:"type:smallint;not null;column:nivel_autismo" json:"nivel_autismo"`
	FatherName    string    `gorm:"not null;column:nome_pai" json:"nome_pai"`
	MotherName    string    `gorm:"not null;column:nome_mae" json:"nome_mae"`
	GuardianPhone string    `gorm:"not null;column:telefone_responsavel" json:"telefone_responsavel"`
	GuardianEmail string    `gorm:"not null;column:email_responsavel" json:"email_responsavel"`
	Needs         *string   `gorm:"type:text;column:necessidades" json:"necessidades,omitempty"`

	CreatedAt time.Time `gorm:"column:criado_em" json:"criado_em"`
	UpdatedAt time.Time `gorm:"column:atualizado_em" json:"atualizado_em"`
}

func (ChildProfile) TableName() string { return "crianca" }

func (c *ChildProfile) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
