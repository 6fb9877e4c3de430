package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySqlStore implements conversation.Store on MySQL using GORM
type MySqlStore struct {
	db *gorm.DB
}

// Enforce the interface at compile time
var _ conversation.Store = (*MySqlStore)(nil)

// NewMySqlStore creates a new chat store with GORM connection
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySqlStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&ChatModel{}, &CustomChatModel{}, &PromptTemplateModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// ListChats returns every chat record owned by a user, oldest first
func (s *MySqlStore) ListChats(ctx context.Context, ownerID uuid.UUID) ([]conversation.ChatRecord, error) {
	var models []ChatModel
	result := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list chats: %w", result.Error)
	}

	records := make([]conversation.ChatRecord, 0, len(models))
	for i := range models {
		record, err := models[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

// InsertChat creates a new chat record and returns it with its assigned id
func (s *MySqlStore) InsertChat(ctx context.Context, ownerID uuid.UUID, title string, transcript conversation.Transcript) (*conversation.ChatRecord, error) {
	messages, err := encodeTranscript(transcript)
	if err != nil {
		return nil, err
	}

	model := &ChatModel{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Title:    title,
		Messages: messages,
	}

	result := s.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert chat: %w", result.Error)
	}

	return model.toRecord()
}

// UpdateChat replaces an existing chat record's title and transcript
func (s *MySqlStore) UpdateChat(ctx context.Context, id uuid.UUID, title string, transcript conversation.Transcript) error {
	messages, err := encodeTranscript(transcript)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&ChatModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":    title,
			"messages": messages,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return conversation.ErrRecordNotFound
	}

	return nil
}

// DeleteChat removes a chat record by id. The owner scoping means a chat
// can only ever be deleted by the user it belongs to.
func (s *MySqlStore) DeleteChat(ctx context.Context, ownerID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&ChatModel{}, "id = ? AND owner_id = ?", id, ownerID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return conversation.ErrRecordNotFound
	}

	return nil
}

// GetCustomChat returns the per-user singleton custom transcript
func (s *MySqlStore) GetCustomChat(ctx context.Context, ownerID uuid.UUID) (conversation.Transcript, error) {
	var model CustomChatModel
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, conversation.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get custom chat: %w", result.Error)
	}

	var transcript conversation.Transcript
	if model.Messages != "" {
		if err := json.Unmarshal([]byte(model.Messages), &transcript); err != nil {
			return nil, fmt.Errorf("failed to decode custom chat transcript: %w", err)
		}
	}

	return transcript, nil
}

// UpsertCustomChat writes the per-user singleton custom transcript,
// creating the record on first save and replacing it afterwards
func (s *MySqlStore) UpsertCustomChat(ctx context.Context, ownerID uuid.UUID, transcript conversation.Transcript) error {
	messages, err := encodeTranscript(transcript)
	if err != nil {
		return err
	}

	// Check if a record already exists for this owner
	var existing CustomChatModel
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&existing)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			// Create new record
			model := &CustomChatModel{OwnerID: ownerID, Messages: messages}
			if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
				return fmt.Errorf("failed to create custom chat: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing custom chat: %w", result.Error)
	}

	// Update existing record, last write wins
	if err := s.db.WithContext(ctx).Model(&existing).Update("messages", messages).Error; err != nil {
		return fmt.Errorf("failed to update custom chat: %w", err)
	}

	return nil
}

// DeleteCustomChat removes the per-user singleton custom transcript
func (s *MySqlStore) DeleteCustomChat(ctx context.Context, ownerID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&CustomChatModel{}, "owner_id = ?", ownerID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete custom chat: %w", result.Error)
	}

	return nil
}

// GetPromptTemplate returns the per-user singleton prompt template
func (s *MySqlStore) GetPromptTemplate(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var model PromptTemplateModel
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return "", conversation.ErrRecordNotFound
		}
		return "", fmt.Errorf("failed to get prompt template: %w", result.Error)
	}

	return model.Template, nil
}

// UpsertPromptTemplate writes the per-user singleton prompt template,
// last write wins
func (s *MySqlStore) UpsertPromptTemplate(ctx context.Context, ownerID uuid.UUID, template string) error {
	var existing PromptTemplateModel
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&existing)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			model := &PromptTemplateModel{OwnerID: ownerID, Template: template}
			if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
				return fmt.Errorf("failed to create prompt template: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing prompt template: %w", result.Error)
	}

	if err := s.db.WithContext(ctx).Model(&existing).Update("template", template).Error; err != nil {
		return fmt.Errorf("failed to update prompt template: %w", err)
	}

	return nil
}
