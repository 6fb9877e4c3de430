package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken is returned when signing up with an already
	// registered email address
	ErrEmailTaken = errors.New("email address is already taken")

	// ErrInvalidCredentials is returned when the email/password pair does
	// not match a registered account
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Store interface defines methods for account storage
type Store interface {
	CreateAccount(ctx context.Context, email, fullName, password string) (*Account, error)
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
}

// MySqlStore handles account persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new account store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySqlStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&AccountModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// CreateAccount registers a new account with a hashed password
func (s *MySqlStore) CreateAccount(ctx context.Context, email, fullName, password string) (*Account, error) {
	// Check for an existing account first
	var existing AccountModel
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing account: %w", result.Error)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	model := &AccountModel{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return model.toAccount(), nil
}

// Authenticate checks an email/password pair against the stored hash
func (s *MySqlStore) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	var model AccountModel
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", result.Error)
	}

	if err := bcrypt.CompareHashAndPassword(model.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return model.toAccount(), nil
}

// GetAccount retrieves an account by id
func (s *MySqlStore) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var model AccountModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to get account: %w", result.Error)
	}

	return model.toAccount(), nil
}
