package custom

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/amverse/amverse/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// GetState handles GET requests for the custom transcript and template
func GetState(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl, err := GetService().controller(c.Request.Context(), sess)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load customization state", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Customization state retrieved successfully", toCustomState(ctrl)).AsGinResponse())
}

// PostMessage handles POST requests to submit a message against the
// custom prompt endpoint
func PostMessage(c *gin.Context) {
	// Parse request body
	var req sdk.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl, err := GetService().controller(c.Request.Context(), sess)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load customization state", err.Error()).AsGinResponse())
		return
	}

	if err := ctrl.SubmitMessage(c.Request.Context(), req.Content); err != nil {
		log.Printf("[CUSTOM]: persistence failed for user %s: %v", sess.UserID, err)
	}

	c.JSON(sdk.NewSuccessResponse("Message sent successfully", toCustomState(ctrl)).AsGinResponse())
}

// PutTemplate handles PUT requests to save the prompt template
func PutTemplate(c *gin.Context) {
	// Parse request body
	var req sdk.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl, err := GetService().controller(c.Request.Context(), sess)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load customization state", err.Error()).AsGinResponse())
		return
	}

	ctrl.SetPromptTemplate(req.Template)
	if err := ctrl.SavePromptTemplate(c.Request.Context()); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to save prompt template", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Prompt template saved successfully", toCustomState(ctrl)).AsGinResponse())
}

// Upload handles POST requests to ingest a PDF document
func Upload(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl, err := GetService().controller(c.Request.Context(), sess)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load customization state", err.Error()).AsGinResponse())
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Please select a file to upload.", err.Error()).AsGinResponse())
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Only PDF files are supported.", nil).AsGinResponse())
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to read uploaded file", err.Error()).AsGinResponse())
		return
	}
	defer file.Close()

	req := conversation.UploadRequest{
		File:        file,
		Filename:    header.Filename,
		Scope:       rag.Scope(c.PostForm("indexType")),
		PrivateName: c.PostForm("privateName"),
	}

	if err := ctrl.UploadDocument(c.Request.Context(), req); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, conversation.ErrPromptTemplateRequired) ||
			errors.Is(err, conversation.ErrFileRequired) ||
			errors.Is(err, conversation.ErrPrivateNameRequired) {
			code = http.StatusBadRequest
		}
		c.JSON(sdk.NewErrorResponse(code, "Failed to ingest document", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Document ingested successfully", toCustomState(ctrl)).AsGinResponse())
}

// ResetHistory handles POST requests to clear the custom transcript
func ResetHistory(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl, err := GetService().controller(c.Request.Context(), sess)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load customization state", err.Error()).AsGinResponse())
		return
	}

	if err := ctrl.ResetHistory(c.Request.Context()); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to reset history", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("History reset successfully", toCustomState(ctrl)).AsGinResponse())
}

// toCustomState converts controller state into the SDK response shape
func toCustomState(ctrl *conversation.CustomController) sdk.CustomState {
	return sdk.CustomState{
		Transcript: ctrl.Transcript(),
		Template:   ctrl.PromptTemplate(),
	}
}
