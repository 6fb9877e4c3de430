package custom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/amverse/amverse/pkg/session"
	"github.com/amverse/amverse/pkg/utils"
)

// CustomService owns one customization controller per signed-in user
type CustomService struct {
	store           conversation.Store
	client          conversation.DocumentClient
	sessions        *session.Manager
	defaultTemplate string
	ingestKey       string

	mutex       sync.Mutex
	controllers map[string]*conversation.CustomController
}

var customService *CustomService

// Init creates the customization service from configuration. The store is
// shared across modules and constructed once in api.Start.
func Init(cfg *utils.Config, store conversation.Store) error {
	secret := cfg.Get("SESSION_SECRET")
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET not set in environment")
	}
	ttl := time.Duration(cfg.GetIntWithDefault("SESSION_TTL_HOURS", 24)) * time.Hour

	timeout := time.Duration(cfg.GetIntWithDefault("RAG_TIMEOUT_SECONDS", 120)) * time.Second
	client := rag.NewClientWithTimeout(cfg.GetWithDefault("RAG_BASE_URL", "http://127.0.0.1:5000"), timeout)

	customService = &CustomService{
		store:           store,
		client:          client,
		sessions:        session.NewManager(secret, ttl),
		defaultTemplate: utils.LoadPromptTemplateWithFallback(cfg.Get("PROMPT_TEMPLATE_FILE"), ""),
		ingestKey:       cfg.Get("INGEST_API_KEY"),
		controllers:     make(map[string]*conversation.CustomController),
	}
	return nil
}

// GetService returns the initialized customization service
func GetService() *CustomService {
	return customService
}

// controller returns the signed-in user's controller, loading any saved
// transcript and prompt template on first use
func (s *CustomService) controller(ctx context.Context, sess *session.Session) (*conversation.CustomController, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := sess.UserID.String()
	if ctrl, exists := s.controllers[key]; exists {
		return ctrl, nil
	}

	ctrl := conversation.NewCustomController(s.client, s.store, sess.UserID, sess.FullName)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	if ctrl.PromptTemplate() == "" && s.defaultTemplate != "" {
		ctrl.SetPromptTemplate(s.defaultTemplate)
	}
	s.controllers[key] = ctrl
	return ctrl, nil
}
