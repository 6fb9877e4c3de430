package compare

import (
	"errors"
	"net/http"

	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// GetState handles GET requests for both comparison transcripts
func GetState(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	c.JSON(sdk.NewSuccessResponse("Comparison state retrieved successfully", toCompareState(ctrl)).AsGinResponse())
}

// PostMessage handles POST requests to submit a message to both the
// retrieval-backed side and the plain model side
func PostMessage(c *gin.Context) {
	// Parse request body
	var req sdk.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	if err := ctrl.SubmitMessage(c.Request.Context(), req.Content); err != nil {
		if errors.Is(err, conversation.ErrCustomerNameRequired) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Customer name is required", err.Error()).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to submit message", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Message sent successfully", toCompareState(ctrl)).AsGinResponse())
}

// CancelPending handles POST requests to cancel the in-flight queries
func CancelPending(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	ctrl.CancelPending()

	c.JSON(sdk.NewSuccessResponse("Pending queries cancelled", toCompareState(ctrl)).AsGinResponse())
}

// toCompareState converts controller state into the SDK response shape
func toCompareState(ctrl *conversation.CompareController) sdk.CompareState {
	ragSide, gptSide := ctrl.Transcripts()
	return sdk.CompareState{
		AmVerse: ragSide,
		ChatGPT: gptSide,
	}
}
