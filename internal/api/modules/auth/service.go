package auth

import (
	"fmt"
	"time"

	account_store "github.com/amverse/amverse/internal/stores/account"
	"github.com/amverse/amverse/pkg/session"
	"github.com/amverse/amverse/pkg/utils"
)

// AuthService handles account registration and sign-in
type AuthService struct {
	accounts account_store.Store
	sessions *session.Manager
}

var authService *AuthService

// Init creates the auth service from configuration. The account store is
// constructed once in api.Start.
func Init(cfg *utils.Config, accounts account_store.Store) error {
	secret := cfg.Get("SESSION_SECRET")
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET not set in environment")
	}

	ttl := time.Duration(cfg.GetIntWithDefault("SESSION_TTL_HOURS", 24)) * time.Hour

	authService = &AuthService{
		accounts: accounts,
		sessions: session.NewManager(secret, ttl),
	}
	return nil
}

// GetService returns the initialized auth service
func GetService() *AuthService {
	return authService
}
