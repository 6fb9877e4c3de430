package chat

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/amverse/amverse/internal/api/middleware"
	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetState handles GET requests for the current transcript and chat list
func GetState(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	if err := ctrl.LoadHistory(c.Request.Context()); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to load chat history", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Chat state retrieved successfully", toChatState(ctrl)).AsGinResponse())
}

// PostMessage handles POST requests to submit a chat message
func PostMessage(c *gin.Context) {
	// Parse request body
	var req sdk.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	// Persistence failures never block the conversation; log and move on
	if err := ctrl.SubmitMessage(c.Request.Context(), req.Content); err != nil {
		log.Printf("[CHAT]: persistence failed for user %s: %v", sess.UserID, err)
	}

	c.JSON(sdk.NewSuccessResponse("Message sent successfully", toChatState(ctrl)).AsGinResponse())
}

// PostAdvice handles POST requests to issue a canned advice topic
func PostAdvice(c *gin.Context) {
	// Parse request body
	var req sdk.AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	if err := ctrl.AdviceSelection(c.Request.Context(), req.Topic); err != nil {
		log.Printf("[CHAT]: persistence failed for user %s: %v", sess.UserID, err)
	}

	c.JSON(sdk.NewSuccessResponse("Advice generated successfully", toChatState(ctrl)).AsGinResponse())
}

// CancelPending handles POST requests to cancel the in-flight query
func CancelPending(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	ctrl.CancelPending()

	c.JSON(sdk.NewSuccessResponse("Pending query cancelled", toChatState(ctrl)).AsGinResponse())
}

// NewChat handles POST requests to start an unsaved new chat
func NewChat(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	ctrl.StartNewChat()

	c.JSON(sdk.NewSuccessResponse("New chat started", toChatState(ctrl)).AsGinResponse())
}

// SelectChat handles POST requests to open a saved chat
func SelectChat(c *gin.Context) {
	// Parse request body
	var req sdk.SelectChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	// The record comes from the cached chat list
	var record *conversation.ChatRecord
	for _, chat := range ctrl.Chats() {
		if chat.ID == req.ChatID {
			record = &chat
			break
		}
	}
	if record == nil {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Chat not found", nil).AsGinResponse())
		return
	}

	ctrl.SelectChat(*record)

	c.JSON(sdk.NewSuccessResponse("Chat opened successfully", toChatState(ctrl)).AsGinResponse())
}

// DeleteChat handles DELETE requests to remove a saved chat
func DeleteChat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid chat id", err.Error()).AsGinResponse())
		return
	}

	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	if err := ctrl.DeleteChat(c.Request.Context(), id); err != nil {
		// Ids outside the session user's chats are indistinguishable from
		// missing ones
		if errors.Is(err, conversation.ErrRecordNotFound) {
			c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Chat not found", nil).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to delete chat", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Chat deleted successfully", toChatState(ctrl)).AsGinResponse())
}

// ExportTranscript handles GET requests to download the working
// transcript as plain text
func ExportTranscript(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	ctrl := GetService().controller(sess)

	transcript := ctrl.Transcript()
	if len(transcript) == 0 {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "No conversation to download", nil).AsGinResponse())
		return
	}

	var b strings.Builder
	b.WriteString("AmVerse Chat Conversation\n\n")
	for _, msg := range transcript {
		prefix := conversation.AssistantName
		if msg.Sender == conversation.SenderUser {
			prefix = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", prefix, msg.Text)
	}

	c.Header("Content-Disposition", `attachment; filename="AmVerse_Conversation.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

// toChatState converts controller state into the SDK response shape
func toChatState(ctrl *conversation.Controller) sdk.ChatState {
	chats := ctrl.Chats()
	summaries := make([]sdk.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, sdk.ChatSummary{
			ID:        chat.ID,
			Title:     chat.Title,
			UpdatedAt: chat.UpdatedAt,
		})
	}

	return sdk.ChatState{
		Transcript:    ctrl.Transcript(),
		CurrentChatID: ctrl.CurrentChatID(),
		Chats:         summaries,
	}
}
