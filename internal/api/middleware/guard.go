package middleware

import (
	"net/http"
	"strings"

	"github.com/amverse/amverse/pkg/sdk"
	"github.com/amverse/amverse/pkg/session"
	"github.com/gin-gonic/gin"
)

// sessionKey is the gin context key holding the verified session
const sessionKey = "amverse-session"

// LoggedOutMessage is surfaced whenever a gated route is reached without a
// valid session
const LoggedOutMessage = "You have been logged out. Please log in to continue."

// SessionGuard gates a route group on a valid session token. The check is
// purely local (token parse and signature verification); a missing or
// invalid token aborts with a redirect hint to the sign-in view. Running
// on every request covers re-checks on history navigation.
func SessionGuard(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Verify(bearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(sdk.NewErrorResponse(http.StatusUnauthorized, LoggedOutMessage, gin.H{"redirect": "/login"}).AsGinResponse())
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session the guard stored for this request
func SessionFromContext(c *gin.Context) *session.Session {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}

	sess, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// bearerToken extracts the access token from the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}
