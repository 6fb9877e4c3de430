package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	t.Run("roundtrip preserves the identity", func(t *testing.T) {
		userID := uuid.New()

		issued, err := manager.Issue(userID, "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)
		require.NotEmpty(t, issued.AccessToken)

		verified, err := manager.Verify(issued.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, userID, verified.UserID)
		assert.Equal(t, "jamie@example.com", verified.Email)
		assert.Equal(t, "Jamie Doe", verified.FullName)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := manager.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour)
		issued, err := other.Issue(uuid.New(), "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)

		_, err = manager.Verify(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewManager("test-secret", -time.Minute)
		issued, err := expired.Issue(uuid.New(), "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)

		_, err = manager.Verify(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
