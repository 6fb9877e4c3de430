package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/amverse/amverse/pkg/format"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/google/uuid"
)

// Fixed assistant messages for degraded backend outcomes
const (
	FallbackNoData  = "No relevant data found in the system. Please contact the system administrator."
	FallbackGeneric = "Oops! Something went wrong. Please try again later."
)

// DefaultChatTitle is used when a transcript has no first message to
// derive a title from
const DefaultChatTitle = "AmVerse Chat"

// defaultContextWindow bounds how many trailing message texts are joined
// into the backend context string
const defaultContextWindow = 10

// QueryClient issues cancellable queries to the retrieval backend
type QueryClient interface {
	Query(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error)
}

// Config parametrizes a Controller. One controller type serves every chat
// view; the view differences live entirely in this configuration.
type Config struct {
	// Routes is the ordered keyword routing table. Empty means
	// DefaultRoutes().
	Routes []Route

	// DefaultEndpoint receives queries no keyword matched. Empty means the
	// open RAG query endpoint.
	DefaultEndpoint rag.Endpoint

	// ContextWindow bounds the trailing message window sent as context.
	// Zero means the default of 10.
	ContextWindow int

	// OwnerID identifies the authenticated user for persistence. The nil
	// UUID disables persistence entirely.
	OwnerID uuid.UUID

	// CustomerName is the user's display name, forwarded to the backend
	CustomerName string
}

// pendingRequest tracks the single in-flight query so a terminal path can
// tell whether it is clearing its own request or one that replaced it
type pendingRequest struct {
	cancel context.CancelFunc
}

// Controller owns one in-memory transcript, routes user input to a backend
// endpoint, and coordinates persistence through the store. All state
// mutations are serialized by its mutex; at most one query is in flight,
// and submitting while one is pending cancels the previous request.
type Controller struct {
	client QueryClient
	store  Store
	cfg    Config

	mu            sync.Mutex
	transcript    Transcript
	currentChatID uuid.UUID // uuid.Nil means an unsaved new chat
	chats         []ChatRecord
	pending       *pendingRequest
}

// NewController creates a controller over the given backend client and
// store. The store may be nil for unpersisted views.
func NewController(client QueryClient, store Store, cfg Config) *Controller {
	if len(cfg.Routes) == 0 {
		cfg.Routes = DefaultRoutes()
	}
	if cfg.DefaultEndpoint == "" {
		cfg.DefaultEndpoint = rag.EndpointOpenQuery
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}

	return &Controller{
		client: client,
		store:  store,
		cfg:    cfg,
	}
}

// SubmitMessage appends text as a user message, routes it to a backend
// endpoint, and appends the shaped answer. Whitespace-only input is a
// no-op. Backend failures degrade to fixed in-transcript messages; a
// cancelled request leaves the transcript exactly as it was, user message
// included. The returned error reports persistence failures only and never
// blocks the conversation.
func (c *Controller) SubmitMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()

	// A second submission while one is pending cancels the previous request
	if c.pending != nil {
		c.pending.cancel()
	}

	c.transcript = append(c.transcript, NewUserMessage(c.cfg.CustomerName, text))

	endpoint := selectEndpoint(c.cfg.Routes, text, c.cfg.DefaultEndpoint)
	req := &rag.QueryRequest{
		Query:        text,
		Context:      c.transcript.ContextWindow(c.cfg.ContextWindow, " "),
		CustomerName: c.cfg.CustomerName,
	}

	reqCtx, cancel := context.WithCancel(ctx)
	p := &pendingRequest{cancel: cancel}
	c.pending = p

	c.mu.Unlock()

	resp, err := c.client.Query(reqCtx, endpoint, req)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p {
		c.pending = nil
	}

	switch {
	case err == nil:
		answer := NewAssistantMessage(format.Response(resp.Response), resp.Sources)
		c.transcript = append(c.transcript, answer)
		return c.persist(ctx)

	case errors.Is(err, context.Canceled):
		// Cancelled by the user: keep the transcript as it was
		return nil

	case errors.Is(err, rag.ErrNoRelevantData):
		c.transcript = append(c.transcript, NewAssistantMessage(FallbackNoData, nil))
		return nil

	default:
		log.Printf("[CHAT]: query to %s failed: %v", endpoint, err)
		c.transcript = append(c.transcript, NewAssistantMessage(FallbackGeneric, nil))
		return nil
	}
}

// AdviceSelection issues one of the canned advice topics as a query
// without a preceding user message. The topic routes through the keyword
// table like typed input.
func (c *Controller) AdviceSelection(ctx context.Context, topic string) error {
	c.mu.Lock()

	if c.pending != nil {
		c.pending.cancel()
	}

	endpoint := selectEndpoint(c.cfg.Routes, topic, c.cfg.DefaultEndpoint)
	req := &rag.QueryRequest{
		Query:        topic,
		CustomerName: c.cfg.CustomerName,
	}

	reqCtx, cancel := context.WithCancel(ctx)
	p := &pendingRequest{cancel: cancel}
	c.pending = p

	c.mu.Unlock()

	resp, err := c.client.Query(reqCtx, endpoint, req)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p {
		c.pending = nil
	}

	switch {
	case err == nil:
		c.transcript = append(c.transcript, NewAssistantMessage(format.Response(resp.Response), resp.Sources))
		return c.persist(ctx)

	case errors.Is(err, context.Canceled):
		return nil

	case errors.Is(err, rag.ErrNoRelevantData):
		c.transcript = append(c.transcript, NewAssistantMessage(FallbackNoData, nil))
		return nil

	default:
		log.Printf("[CHAT]: advice query to %s failed: %v", endpoint, err)
		return nil
	}
}

// CancelPending cancels the in-flight query, if any. The already-appended
// user message is retained.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
}

// StartNewChat clears the transcript and marks the chat unsaved. Persisted
// records are untouched.
func (c *Controller) StartNewChat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = nil
	c.currentChatID = uuid.Nil
}

// SelectChat replaces the working transcript with a persisted record
func (c *Controller) SelectChat(record ChatRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = append(Transcript(nil), record.Transcript...)
	c.currentChatID = record.ID
}

// DeleteChat removes a persisted chat. The delete is scoped to the
// configured owner, so an id belonging to another user is rejected by the
// store. Deleting the currently open chat also clears the working
// transcript.
func (c *Controller) DeleteChat(ctx context.Context, id uuid.UUID) error {
	if c.store == nil {
		return nil
	}

	if err := c.store.DeleteChat(ctx, c.cfg.OwnerID, id); err != nil {
		log.Printf("[CHAT]: failed to delete chat %s: %v", id, err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.chats[:0]
	for _, chat := range c.chats {
		if chat.ID != id {
			kept = append(kept, chat)
		}
	}
	c.chats = kept

	if id == c.currentChatID {
		c.transcript = nil
		c.currentChatID = uuid.Nil
	}

	return nil
}

// LoadHistory refreshes the cached chat list from the store
func (c *Controller) LoadHistory(ctx context.Context) error {
	if c.store == nil || c.cfg.OwnerID == uuid.Nil {
		return nil
	}

	chats, err := c.store.ListChats(ctx, c.cfg.OwnerID)
	if err != nil {
		log.Printf("[CHAT]: failed to load chat history: %v", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats = chats
	return nil
}

// Transcript returns a copy of the working transcript
func (c *Controller) Transcript() Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Transcript(nil), c.transcript...)
}

// CurrentChatID returns the id of the open chat, or uuid.Nil for an
// unsaved new chat
func (c *Controller) CurrentChatID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentChatID
}

// Chats returns the cached chat list
func (c *Controller) Chats() []ChatRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatRecord(nil), c.chats...)
}

// persist writes the whole transcript to the store: an update when the
// chat already has an id, otherwise an insert whose assigned id becomes
// current. Failures are logged and returned but never block the
// conversation. Callers must hold c.mu.
func (c *Controller) persist(ctx context.Context) error {
	if c.store == nil || c.cfg.OwnerID == uuid.Nil {
		return nil
	}

	title := c.transcript.Title(DefaultChatTitle)

	if c.currentChatID != uuid.Nil {
		if err := c.store.UpdateChat(ctx, c.currentChatID, title, c.transcript); err != nil {
			log.Printf("[CHAT]: failed to update chat %s: %v", c.currentChatID, err)
			return err
		}

		// Full reload: the store is the source of truth after an update
		chats, err := c.store.ListChats(ctx, c.cfg.OwnerID)
		if err != nil {
			log.Printf("[CHAT]: failed to reload chat history: %v", err)
			return err
		}
		c.chats = chats
		return nil
	}

	record, err := c.store.InsertChat(ctx, c.cfg.OwnerID, title, c.transcript)
	if err != nil {
		log.Printf("[CHAT]: failed to save new chat: %v", err)
		return err
	}

	c.currentChatID = record.ID
	c.chats = append(c.chats, *record)
	return nil
}
