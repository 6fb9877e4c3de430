package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatModel is the database model for per-chat transcript records
type ChatModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`

	OwnerID  uuid.UUID `json:"owner_id" gorm:"type:char(36);not null;index"`
	Title    string    `json:"title" gorm:"size:255;not null"`
	Messages string    `json:"messages" gorm:"type:longtext"`
}

// TableName sets the table name for GORM
func (ChatModel) TableName() string {
	return "chats"
}

// CustomChatModel is the database model for the per-user singleton custom
// chat transcript
type CustomChatModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	OwnerID  uuid.UUID `json:"owner_id" gorm:"type:char(36);unique;not null"`
	Messages string    `json:"messages" gorm:"type:longtext"`
}

// TableName sets the table name for GORM
func (CustomChatModel) TableName() string {
	return "custom_chats"
}

// PromptTemplateModel is the database model for the per-user singleton
// prompt template
type PromptTemplateModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	OwnerID  uuid.UUID `json:"owner_id" gorm:"type:char(36);unique;not null"`
	Template string    `json:"template" gorm:"type:text"`
}

// TableName sets the table name for GORM
func (PromptTemplateModel) TableName() string {
	return "prompt_templates"
}

// toRecord converts a database model into a domain chat record,
// deserializing the transcript blob
func (m *ChatModel) toRecord() (*conversation.ChatRecord, error) {
	var transcript conversation.Transcript
	if m.Messages != "" {
		if err := json.Unmarshal([]byte(m.Messages), &transcript); err != nil {
			return nil, fmt.Errorf("failed to decode transcript for chat %s: %w", m.ID, err)
		}
	}

	return &conversation.ChatRecord{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		Title:      m.Title,
		Transcript: transcript,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

// encodeTranscript serializes a transcript as a single JSON blob so saves
// stay atomic
func encodeTranscript(transcript conversation.Transcript) (string, error) {
	b, err := json.Marshal(transcript)
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	return string(b), nil
}
