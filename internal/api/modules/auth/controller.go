package auth

import (
	"errors"
	"net/http"

	account_store "github.com/amverse/amverse/internal/stores/account"
	"github.com/amverse/amverse/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Signup handles POST requests to register a new account. An already
// registered email falls back to a sign-in attempt with the supplied
// password, matching the original sign-up flow.
func Signup(c *gin.Context) {
	// Parse request body
	var req sdk.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	service := GetService()
	account, err := service.accounts.CreateAccount(c.Request.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if !errors.Is(err, account_store.ErrEmailTaken) {
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "An unknown error occurred during sign-up", err.Error()).AsGinResponse())
			return
		}

		// Email address is already taken: sign the existing user in
		account, err = service.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Email address is already taken", err.Error()).AsGinResponse())
			return
		}

		sess, err := service.sessions.Issue(account.ID, account.Email, account.FullName)
		if err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create session", err.Error()).AsGinResponse())
			return
		}

		c.JSON(sdk.NewSuccessResponse("Successfully signed in existing user", *sess).AsGinResponse())
		return
	}

	sess, err := service.sessions.Issue(account.ID, account.Email, account.FullName)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create session", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Sign-up successful", *sess).AsGinResponse())
}

// Login handles POST requests to sign in
func Login(c *gin.Context) {
	// Parse request body
	var req sdk.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	service := GetService()
	account, err := service.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password", nil).AsGinResponse())
		return
	}

	sess, err := service.sessions.Issue(account.ID, account.Email, account.FullName)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create session", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Login successful", *sess).AsGinResponse())
}

// Logout handles POST requests to end a session. Tokens are stateless, so
// the client simply discards its copy; the endpoint exists so the views
// have one place to end a session.
func Logout(c *gin.Context) {
	c.JSON(sdk.NewSuccessResponse("Logged out", struct{}{}).AsGinResponse())
}
