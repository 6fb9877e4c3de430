package conversation

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/amverse/amverse/pkg/rag"
	"github.com/google/uuid"
)

// Validation failures surfaced before any network call is attempted
var (
	ErrPromptTemplateRequired = errors.New("a custom prompt template is required")
	ErrFileRequired           = errors.New("a file to upload is required")
	ErrPrivateNameRequired    = errors.New("a name for the private index is required")
)

// DocumentClient extends the query capability with document ingestion
type DocumentClient interface {
	QueryClient
	IngestDocument(ctx context.Context, req *rag.IngestRequest) (*rag.IngestResponse, error)
	DeletePreviousDocument(ctx context.Context, customerName string, scope rag.Scope) (*rag.IngestResponse, error)
}

// CustomController is the prompt-customization variant of the controller.
// Its transcript persists as a single per-user record (upsert by owner),
// every query targets the custom query endpoint with the prompt template
// attached, and the full transcript is sent as context.
type CustomController struct {
	client DocumentClient
	store  Store

	ownerID      uuid.UUID
	customerName string

	mu         sync.Mutex
	transcript Transcript
	template   string
}

// NewCustomController creates the customization-variant controller
func NewCustomController(client DocumentClient, store Store, ownerID uuid.UUID, customerName string) *CustomController {
	return &CustomController{
		client:       client,
		store:        store,
		ownerID:      ownerID,
		customerName: customerName,
	}
}

// Load restores the per-user transcript and prompt template from the
// store. Missing records mean a fresh start, not an error.
func (c *CustomController) Load(ctx context.Context) error {
	transcript, err := c.store.GetCustomChat(ctx, c.ownerID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		log.Printf("[CUSTOM]: failed to load chat history: %v", err)
		return err
	}

	template, err := c.store.GetPromptTemplate(ctx, c.ownerID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		log.Printf("[CUSTOM]: failed to load prompt template: %v", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = transcript
	c.template = template
	return nil
}

// SubmitMessage appends text as a user message and queries the custom
// endpoint with the current prompt template and the full transcript as
// context. Any backend failure degrades to the generic in-transcript
// message. The returned error reports persistence failures only.
func (c *CustomController) SubmitMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, NewUserMessage(c.customerName, text))

	req := &rag.QueryRequest{
		Query:        text,
		Context:      c.transcript.ContextWindow(0, "\n"),
		CustomerName: c.customerName,
		CustomPrompt: c.template,
	}
	c.mu.Unlock()

	resp, err := c.client.Query(ctx, rag.EndpointCustomQuery, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		log.Printf("[CUSTOM]: query failed: %v", err)
		c.transcript = append(c.transcript, NewAssistantMessage(FallbackGeneric, nil))
		return nil
	}

	// The custom view displays the backend answer verbatim
	c.transcript = append(c.transcript, NewAssistantMessage(resp.Response, resp.Sources))
	return c.persist(ctx)
}

// PromptTemplate returns the current prompt template
func (c *CustomController) PromptTemplate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.template
}

// SetPromptTemplate replaces the in-memory prompt template without
// persisting it
func (c *CustomController) SetPromptTemplate(template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.template = template
}

// SavePromptTemplate persists the current prompt template, last write wins
func (c *CustomController) SavePromptTemplate(ctx context.Context) error {
	c.mu.Lock()
	template := c.template
	c.mu.Unlock()

	if err := c.store.UpsertPromptTemplate(ctx, c.ownerID, template); err != nil {
		log.Printf("[CUSTOM]: failed to save prompt template: %v", err)
		return err
	}
	return nil
}

// UploadRequest describes a document upload initiated by the user
type UploadRequest struct {
	File        io.Reader
	Filename    string
	Scope       rag.Scope
	PrivateName string
}

// UploadDocument validates the upload, saves the prompt template, clears
// any previous User-scope document (best effort), and ingests the file.
// A successful ingestion resets the visible transcript to a single
// assistant message echoing the prompt template.
func (c *CustomController) UploadDocument(ctx context.Context, req UploadRequest) error {
	c.mu.Lock()
	template := c.template
	c.mu.Unlock()

	if strings.TrimSpace(template) == "" {
		return ErrPromptTemplateRequired
	}

	// The template is saved before the upload is attempted
	if err := c.SavePromptTemplate(ctx); err != nil {
		return err
	}

	if req.File == nil {
		return ErrFileRequired
	}
	if req.Scope == rag.ScopePrivate && strings.TrimSpace(req.PrivateName) == "" {
		return ErrPrivateNameRequired
	}

	if req.Scope == rag.ScopeUser {
		// Best effort: a failed cleanup never blocks the upload
		if resp, err := c.client.DeletePreviousDocument(ctx, c.customerName, req.Scope); err != nil {
			log.Printf("[CUSTOM]: failed to delete previous document: %v", err)
		} else if !resp.Success {
			log.Printf("[CUSTOM]: previous document not deleted: %s", resp.Message)
		}
	}

	ingest := &rag.IngestRequest{
		File:         req.File,
		Filename:     req.Filename,
		Scope:        req.Scope,
		CustomPrompt: template,
	}
	switch req.Scope {
	case rag.ScopeUser:
		ingest.CustomerName = c.customerName
	case rag.ScopePrivate:
		ingest.PrivateName = req.PrivateName
	}

	resp, err := c.client.IngestDocument(ctx, ingest)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = Transcript{NewAssistantMessage(template, nil)}
	return c.persist(ctx)
}

// ResetHistory deletes the persisted per-user transcript and clears the
// working copy
func (c *CustomController) ResetHistory(ctx context.Context) error {
	if err := c.store.DeleteCustomChat(ctx, c.ownerID); err != nil {
		log.Printf("[CUSTOM]: failed to reset chat history: %v", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = nil
	return nil
}

// Transcript returns a copy of the working transcript
func (c *CustomController) Transcript() Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Transcript(nil), c.transcript...)
}

// persist upserts the whole transcript under the owner's singleton record.
// Callers must hold c.mu.
func (c *CustomController) persist(ctx context.Context) error {
	if c.ownerID == uuid.Nil {
		return nil
	}

	if err := c.store.UpsertCustomChat(ctx, c.ownerID, c.transcript); err != nil {
		log.Printf("[CUSTOM]: failed to save chat: %v", err)
		return err
	}
	return nil
}
