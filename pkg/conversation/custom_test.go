package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/amverse/amverse/pkg/rag"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomController(client DocumentClient, store Store) *CustomController {
	return NewCustomController(client, store, uuid.New(), "Jamie")
}

func TestCustomLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing records mean a fresh start", func(t *testing.T) {
		controller := newTestCustomController(&fakeClient{}, newFakeStore())

		require.NoError(t, controller.Load(ctx))

		assert.Empty(t, controller.Transcript())
		assert.Empty(t, controller.PromptTemplate())
	})

	t.Run("restores a saved transcript and template", func(t *testing.T) {
		store := newFakeStore()
		owner := uuid.New()
		require.NoError(t, store.UpsertCustomChat(ctx, owner, Transcript{NewUserMessage("Jamie", "saved")}))
		require.NoError(t, store.UpsertPromptTemplate(ctx, owner, "act as a planner"))

		controller := NewCustomController(&fakeClient{}, store, owner, "Jamie")
		require.NoError(t, controller.Load(ctx))

		require.Len(t, controller.Transcript(), 1)
		assert.Equal(t, "act as a planner", controller.PromptTemplate())
	})
}

func TestCustomSubmitMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("queries the custom endpoint with template and full context", func(t *testing.T) {
		client := &fakeClient{
			queryFn: func(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error) {
				return &rag.QueryResponse{Response: "### raw markdown answer"}, nil
			},
		}
		controller := newTestCustomController(client, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		require.NoError(t, controller.SubmitMessage(ctx, "first"))
		require.NoError(t, controller.SubmitMessage(ctx, "second"))

		last := client.lastQuery()
		assert.Equal(t, rag.EndpointCustomQuery, last.Endpoint)
		assert.Equal(t, "act as a planner", last.Request.CustomPrompt)
		assert.Equal(t, "first\n### raw markdown answer\nsecond", last.Request.Context)
	})

	t.Run("the answer is displayed verbatim", func(t *testing.T) {
		client := &fakeClient{
			queryFn: func(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error) {
				return &rag.QueryResponse{Response: "### Heading\n**bold**"}, nil
			},
		}
		controller := newTestCustomController(client, newFakeStore())

		require.NoError(t, controller.SubmitMessage(ctx, "hello"))

		transcript := controller.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, "### Heading\n**bold**", transcript[1].Text)
	})

	t.Run("any failure degrades to the generic fallback", func(t *testing.T) {
		client := &fakeClient{
			queryFn: func(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error) {
				return nil, rag.ErrNoRelevantData
			},
		}
		controller := newTestCustomController(client, newFakeStore())

		require.NoError(t, controller.SubmitMessage(ctx, "hello"))

		transcript := controller.Transcript()
		require.Len(t, transcript, 2)
		assert.Equal(t, FallbackGeneric, transcript[1].Text)
	})

	t.Run("transcript persists as a per-user singleton", func(t *testing.T) {
		store := newFakeStore()
		owner := uuid.New()
		controller := NewCustomController(&fakeClient{}, store, owner, "Jamie")

		require.NoError(t, controller.SubmitMessage(ctx, "first"))
		require.NoError(t, controller.SubmitMessage(ctx, "second"))

		saved, err := store.GetCustomChat(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, saved, 4)
	})
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a prompt template first", func(t *testing.T) {
		client := &fakeClient{}
		controller := newTestCustomController(client, newFakeStore())

		err := controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePublic,
		})
		assert.ErrorIs(t, err, ErrPromptTemplateRequired)
		assert.Empty(t, client.ingests)
	})

	t.Run("requires a file", func(t *testing.T) {
		controller := newTestCustomController(&fakeClient{}, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		err := controller.UploadDocument(ctx, UploadRequest{Scope: rag.ScopePublic})
		assert.ErrorIs(t, err, ErrFileRequired)
	})

	t.Run("private scope requires an index name", func(t *testing.T) {
		controller := newTestCustomController(&fakeClient{}, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		err := controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePrivate,
		})
		assert.ErrorIs(t, err, ErrPrivateNameRequired)
	})

	t.Run("saves the template before uploading", func(t *testing.T) {
		store := newFakeStore()
		owner := uuid.New()
		controller := NewCustomController(&fakeClient{}, store, owner, "Jamie")
		controller.SetPromptTemplate("act as a planner")

		require.NoError(t, controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePublic,
		}))

		template, err := store.GetPromptTemplate(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, "act as a planner", template)
	})

	t.Run("user scope deletes the previous document first", func(t *testing.T) {
		client := &fakeClient{}
		controller := newTestCustomController(client, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		require.NoError(t, controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopeUser,
		}))

		require.Len(t, client.deleted, 1)
		assert.Equal(t, rag.ScopeUser, client.deleted[0])
		require.Len(t, client.ingests, 1)
		assert.Equal(t, "Jamie", client.ingests[0].CustomerName)
	})

	t.Run("failed cleanup does not block the upload", func(t *testing.T) {
		client := &fakeClient{
			deleteFn: func(ctx context.Context, customerName string, scope rag.Scope) (*rag.IngestResponse, error) {
				return nil, errStoreDown
			},
		}
		controller := newTestCustomController(client, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		require.NoError(t, controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopeUser,
		}))
		assert.Len(t, client.ingests, 1)
	})

	t.Run("public scope skips the cleanup", func(t *testing.T) {
		client := &fakeClient{}
		controller := newTestCustomController(client, newFakeStore())
		controller.SetPromptTemplate("act as a planner")

		require.NoError(t, controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePublic,
		}))
		assert.Empty(t, client.deleted)
	})

	t.Run("success resets the transcript to the template echo", func(t *testing.T) {
		controller := newTestCustomController(&fakeClient{}, newFakeStore())
		controller.SetPromptTemplate("act as a planner")
		require.NoError(t, controller.SubmitMessage(ctx, "old conversation"))

		require.NoError(t, controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePublic,
		}))

		transcript := controller.Transcript()
		require.Len(t, transcript, 1)
		assert.Equal(t, SenderAssistant, transcript[0].Sender)
		assert.Equal(t, "act as a planner", transcript[0].Text)
	})

	t.Run("unsuccessful ingestion surfaces the backend message", func(t *testing.T) {
		client := &fakeClient{
			ingestFn: func(ctx context.Context, req *rag.IngestRequest) (*rag.IngestResponse, error) {
				return &rag.IngestResponse{Success: false, Message: "index unavailable"}, nil
			},
		}
		controller := newTestCustomController(client, newFakeStore())
		controller.SetPromptTemplate("act as a planner")
		require.NoError(t, controller.SubmitMessage(ctx, "old conversation"))

		err := controller.UploadDocument(ctx, UploadRequest{
			File:     strings.NewReader("pdf"),
			Filename: "doc.pdf",
			Scope:    rag.ScopePublic,
		})
		require.EqualError(t, err, "index unavailable")

		// Transcript untouched on failure
		assert.Len(t, controller.Transcript(), 2)
	})
}

func TestResetHistory(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	owner := uuid.New()
	controller := NewCustomController(&fakeClient{}, store, owner, "Jamie")

	require.NoError(t, controller.SubmitMessage(ctx, "hello"))
	require.NoError(t, controller.ResetHistory(ctx))

	assert.Empty(t, controller.Transcript())
	_, err := store.GetCustomChat(ctx, owner)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
