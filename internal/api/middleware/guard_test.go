package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amverse/amverse/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedEngine(manager *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	group := engine.Group("/gated")
	group.Use(SessionGuard(manager))
	group.GET("", func(c *gin.Context) {
		sess := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"email": sess.Email})
	})
	return engine
}

func TestSessionGuard(t *testing.T) {
	manager := session.NewManager("test-secret", time.Hour)
	engine := newGuardedEngine(manager)

	t.Run("valid token passes and exposes the session", func(t *testing.T) {
		issued, err := manager.Issue(uuid.New(), "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+issued.AccessToken)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "jamie@example.com")
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), LoggedOutMessage)
		assert.Contains(t, w.Body.String(), "/login")
		assert.NotContains(t, w.Body.String(), "jamie@example.com")
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token from another secret is rejected", func(t *testing.T) {
		other := session.NewManager("other-secret", time.Hour)
		issued, err := other.Issue(uuid.New(), "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+issued.AccessToken)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("header without bearer prefix is rejected", func(t *testing.T) {
		issued, err := manager.Issue(uuid.New(), "jamie@example.com", "Jamie Doe")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Authorization", issued.AccessToken)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
