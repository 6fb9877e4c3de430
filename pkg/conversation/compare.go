package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/amverse/amverse/pkg/format"
	"github.com/amverse/amverse/pkg/rag"
)

// ErrCustomerNameRequired is returned when a comparison query is attempted
// without a display name to forward to the backend
var ErrCustomerNameRequired = errors.New("customer name is required")

// GptName is the display name on the comparison side of the split view
const GptName = "ChatGPT"

// CompareController runs the side-by-side comparison view: one submission
// queries both the retrieval backend and the plain GPT endpoint, keeping
// two parallel transcripts. Nothing is persisted.
type CompareController struct {
	client       QueryClient
	routes       []Route
	customerName string

	mu            sync.Mutex
	ragTranscript Transcript
	gptTranscript Transcript
	pending       *pendingRequest
}

// NewCompareController creates the comparison controller
func NewCompareController(client QueryClient, customerName string) *CompareController {
	return &CompareController{
		client:       client,
		routes:       CompareRoutes(),
		customerName: customerName,
	}
}

// SubmitMessage appends text as a user message to both transcripts, then
// queries the routed retrieval endpoint and the GPT endpoint under one
// cancellation handle. Both answers are appended together; on any failure
// neither side gains an answer.
func (c *CompareController) SubmitMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if c.customerName == "" {
		return ErrCustomerNameRequired
	}

	c.mu.Lock()

	if c.pending != nil {
		c.pending.cancel()
	}

	userMsg := NewUserMessage(c.customerName, text)
	c.ragTranscript = append(c.ragTranscript, userMsg)
	c.gptTranscript = append(c.gptTranscript, userMsg)

	endpoint := selectEndpoint(c.routes, text, rag.EndpointOpenQuery)

	reqCtx, cancel := context.WithCancel(ctx)
	p := &pendingRequest{cancel: cancel}
	c.pending = p

	c.mu.Unlock()

	ragResp, err := c.client.Query(reqCtx, endpoint, &rag.QueryRequest{
		Query:        text,
		CustomerName: c.customerName,
	})

	var gptResp *rag.QueryResponse
	if err == nil {
		gptResp, err = c.client.Query(reqCtx, rag.EndpointGptQuery, &rag.QueryRequest{Query: text})
	}
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == p {
		c.pending = nil
	}

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[COMPARE]: query failed: %v", err)
		}
		return nil
	}

	c.ragTranscript = append(c.ragTranscript, NewAssistantMessage(format.Response(ragResp.Response), ragResp.Sources))
	c.gptTranscript = append(c.gptTranscript, Message{
		Sender:      SenderAssistant,
		DisplayName: GptName,
		Text:        format.Response(gptResp.Response),
	})
	return nil
}

// CancelPending cancels the in-flight query pair, if any
func (c *CompareController) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
}

// Transcripts returns copies of the retrieval-side and GPT-side
// transcripts
func (c *CompareController) Transcripts() (Transcript, Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Transcript(nil), c.ragTranscript...), append(Transcript(nil), c.gptTranscript...)
}
