package compare

import (
	"fmt"
	"sync"
	"time"

	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/amverse/amverse/pkg/session"
	"github.com/amverse/amverse/pkg/utils"
)

// CompareService owns one comparison controller per signed-in user. The
// comparison view is ephemeral so there is no backing store.
type CompareService struct {
	client   conversation.QueryClient
	sessions *session.Manager

	mutex       sync.Mutex
	controllers map[string]*conversation.CompareController
}

var compareService *CompareService

// Init creates the comparison service from configuration
func Init(cfg *utils.Config) error {
	secret := cfg.Get("SESSION_SECRET")
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET not set in environment")
	}
	ttl := time.Duration(cfg.GetIntWithDefault("SESSION_TTL_HOURS", 24)) * time.Hour

	timeout := time.Duration(cfg.GetIntWithDefault("RAG_TIMEOUT_SECONDS", 120)) * time.Second
	client := rag.NewClientWithTimeout(cfg.GetWithDefault("RAG_BASE_URL", "http://127.0.0.1:5000"), timeout)

	compareService = &CompareService{
		client:      client,
		sessions:    session.NewManager(secret, ttl),
		controllers: make(map[string]*conversation.CompareController),
	}
	return nil
}

// GetService returns the initialized comparison service
func GetService() *CompareService {
	return compareService
}

// controller returns the signed-in user's comparison controller
func (s *CompareService) controller(sess *session.Session) *conversation.CompareController {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := sess.UserID.String()
	if ctrl, exists := s.controllers[key]; exists {
		return ctrl
	}

	ctrl := conversation.NewCompareController(s.client, sess.FullName)
	s.controllers[key] = ctrl
	return ctrl
}
