package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for missing, malformed, expired, or
// tampered access tokens
var ErrInvalidToken = errors.New("invalid session token")

// Session is the per-user authentication state. It is created by the
// sign-in flow, carried explicitly by callers, and read by the guard; the
// Manager is its single writer.
type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
}

// Manager issues and verifies session access tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager signing tokens with secret. ttl
// bounds how long an issued session stays valid.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a session for the given account
func (m *Manager) Issue(userID uuid.UUID, email, fullName string) (*Session, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID.String(),
		"email":     email,
		"full_name": fullName,
		"iat":       now.Unix(),
		"exp":       now.Add(m.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		AccessToken: token,
		UserID:      userID,
		Email:       email,
		FullName:    fullName,
	}, nil
}

// Verify parses an access token and reconstructs its session. This is a
// pure local check; no network call is involved.
func (m *Manager) Verify(accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	fullName, _ := claims["full_name"].(string)

	return &Session{
		AccessToken: accessToken,
		UserID:      userID,
		Email:       email,
		FullName:    fullName,
	}, nil
}
