package chat

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/amverse/amverse/pkg/session"
	"github.com/amverse/amverse/pkg/utils"
)

// ChatService owns one conversation controller per signed-in user
type ChatService struct {
	store    conversation.Store
	client   conversation.QueryClient
	sessions *session.Manager

	routes          []conversation.Route
	defaultEndpoint rag.Endpoint

	mutex       sync.Mutex
	controllers map[string]*conversation.Controller
}

var chatService *ChatService

// Init creates the chat service from configuration. The store is shared
// across modules and constructed once in api.Start.
func Init(cfg *utils.Config, store conversation.Store) error {
	secret := cfg.Get("SESSION_SECRET")
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET not set in environment")
	}
	ttl := time.Duration(cfg.GetIntWithDefault("SESSION_TTL_HOURS", 24)) * time.Hour

	timeout := time.Duration(cfg.GetIntWithDefault("RAG_TIMEOUT_SECONDS", 120)) * time.Second
	client := rag.NewClientWithTimeout(cfg.GetWithDefault("RAG_BASE_URL", "http://127.0.0.1:5000"), timeout)

	// The routing table may be overridden by an external YAML file
	routes := conversation.DefaultRoutes()
	defaultEndpoint := rag.EndpointOpenQuery
	if path := cfg.Get("ROUTES_FILE"); path != "" {
		loaded, def, err := conversation.LoadRoutes(path)
		if err != nil {
			return fmt.Errorf("failed to load routing table: %w", err)
		}
		routes = loaded
		if def != "" {
			defaultEndpoint = def
		}
		log.Printf("[CHAT]: loaded %d routes from %s", len(routes), path)
	}

	chatService = &ChatService{
		store:           store,
		client:          client,
		sessions:        session.NewManager(secret, ttl),
		routes:          routes,
		defaultEndpoint: defaultEndpoint,
		controllers:     make(map[string]*conversation.Controller),
	}
	return nil
}

// GetService returns the initialized chat service
func GetService() *ChatService {
	return chatService
}

// controller returns the signed-in user's controller, creating one with a
// freshly loaded chat history on first use
func (s *ChatService) controller(sess *session.Session) *conversation.Controller {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := sess.UserID.String()
	if ctrl, exists := s.controllers[key]; exists {
		return ctrl
	}

	ctrl := conversation.NewController(s.client, s.store, conversation.Config{
		Routes:          s.routes,
		DefaultEndpoint: s.defaultEndpoint,
		OwnerID:         sess.UserID,
		CustomerName:    sess.FullName,
	})
	s.controllers[key] = ctrl
	return ctrl
}
