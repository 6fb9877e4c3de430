package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a registered user
type Account struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

// AccountModel is the database model for user accounts
type AccountModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`

	Email        string `json:"email" gorm:"size:255;unique;not null"`
	FullName     string `json:"full_name" gorm:"size:255;not null"`
	PasswordHash []byte `json:"-" gorm:"column:password_hash;not null"`
}

// TableName sets the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// toAccount converts a database model into the public account type
func (m *AccountModel) toAccount() *Account {
	return &Account{
		ID:       m.ID,
		Email:    m.Email,
		FullName: m.FullName,
	}
}
