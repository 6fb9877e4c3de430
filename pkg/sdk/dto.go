package sdk

import (
	"encoding/json"
	"time"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/session"
	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/google/uuid"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Requests */

// SignupRequest represents the request body for registering an account
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PostMessageRequest represents the request body for submitting a chat message
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// AdviceRequest represents the request body for a canned advice topic
type AdviceRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// SelectChatRequest represents the request body for opening a saved chat
type SelectChatRequest struct {
	ChatID uuid.UUID `json:"chat_id" binding:"required"`
}

// TemplateRequest represents the request body for saving a prompt template
type TemplateRequest struct {
	Template string `json:"template" binding:"required"`
}

/** Responses */

// ChatSummary is a chat list entry
type ChatSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatState is the controller state returned after chat operations
type ChatState struct {
	Transcript    conversation.Transcript `json:"transcript"`
	CurrentChatID uuid.UUID               `json:"current_chat_id"`
	Chats         []ChatSummary           `json:"chats"`
}

// CustomState is the customization-variant state
type CustomState struct {
	Transcript conversation.Transcript `json:"transcript"`
	Template   string                  `json:"template"`
}

// CompareState holds the two parallel comparison transcripts
type CompareState struct {
	AmVerse conversation.Transcript `json:"amverse"`
	ChatGPT conversation.Transcript `json:"chatgpt"`
}

// Session is the payload returned by the auth endpoints
type Session = session.Session
