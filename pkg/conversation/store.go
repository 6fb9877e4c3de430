package conversation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned by stores when a chat, custom chat or
// prompt template does not exist
var ErrRecordNotFound = errors.New("record not found")

// Store is the capability set the controllers need from the remote store.
// Saves are atomic from the controller's point of view: a transcript is
// written as a whole, never message by message.
type Store interface {
	// Per-chat records. Deletes are scoped to the owner so one user can
	// never remove another user's chat.
	ListChats(ctx context.Context, ownerID uuid.UUID) ([]ChatRecord, error)
	InsertChat(ctx context.Context, ownerID uuid.UUID, title string, transcript Transcript) (*ChatRecord, error)
	UpdateChat(ctx context.Context, id uuid.UUID, title string, transcript Transcript) error
	DeleteChat(ctx context.Context, ownerID, id uuid.UUID) error

	// Per-user singleton custom chat (upsert keyed by owner)
	GetCustomChat(ctx context.Context, ownerID uuid.UUID) (Transcript, error)
	UpsertCustomChat(ctx context.Context, ownerID uuid.UUID, transcript Transcript) error
	DeleteCustomChat(ctx context.Context, ownerID uuid.UUID) error

	// Per-user singleton prompt template (upsert keyed by owner)
	GetPromptTemplate(ctx context.Context, ownerID uuid.UUID) (string, error)
	UpsertPromptTemplate(ctx context.Context, ownerID uuid.UUID, template string) error
}
