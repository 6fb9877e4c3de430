package conversation

import (
	"context"
	"errors"
	"sync"

	"github.com/amverse/amverse/pkg/rag"
	"github.com/google/uuid"
)

var errStoreDown = errors.New("store down")

// recordedQuery captures one backend call made through the fake client
type recordedQuery struct {
	Endpoint rag.Endpoint
	Request  rag.QueryRequest
}

// fakeClient is a scriptable in-memory backend client
type fakeClient struct {
	mu      sync.Mutex
	queries []recordedQuery

	queryFn  func(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error)
	ingestFn func(ctx context.Context, req *rag.IngestRequest) (*rag.IngestResponse, error)
	deleteFn func(ctx context.Context, customerName string, scope rag.Scope) (*rag.IngestResponse, error)

	deleted []rag.Scope
	ingests []*rag.IngestRequest
}

func (f *fakeClient) Query(ctx context.Context, endpoint rag.Endpoint, req *rag.QueryRequest) (*rag.QueryResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, recordedQuery{Endpoint: endpoint, Request: *req})
	fn := f.queryFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, endpoint, req)
	}
	return &rag.QueryResponse{Response: "answer"}, nil
}

func (f *fakeClient) IngestDocument(ctx context.Context, req *rag.IngestRequest) (*rag.IngestResponse, error) {
	f.mu.Lock()
	f.ingests = append(f.ingests, req)
	fn := f.ingestFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &rag.IngestResponse{Success: true, Message: "ingested"}, nil
}

func (f *fakeClient) DeletePreviousDocument(ctx context.Context, customerName string, scope rag.Scope) (*rag.IngestResponse, error) {
	f.mu.Lock()
	f.deleted = append(f.deleted, scope)
	fn := f.deleteFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, customerName, scope)
	}
	return &rag.IngestResponse{Success: true, Message: "deleted"}, nil
}

func (f *fakeClient) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeClient) lastQuery() recordedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

// fakeStore is an in-memory Store
type fakeStore struct {
	mu sync.Mutex

	chats     map[uuid.UUID]*ChatRecord
	order     []uuid.UUID
	custom    map[uuid.UUID]Transcript
	templates map[uuid.UUID]string

	inserts int
	updates int
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chats:     make(map[uuid.UUID]*ChatRecord),
		custom:    make(map[uuid.UUID]Transcript),
		templates: make(map[uuid.UUID]string),
	}
}

func (s *fakeStore) ListChats(ctx context.Context, ownerID uuid.UUID) ([]ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}

	var out []ChatRecord
	for _, id := range s.order {
		if chat := s.chats[id]; chat != nil && chat.OwnerID == ownerID {
			out = append(out, *chat)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertChat(ctx context.Context, ownerID uuid.UUID, title string, transcript Transcript) (*ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}

	s.inserts++
	record := &ChatRecord{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      title,
		Transcript: append(Transcript(nil), transcript...),
	}
	s.chats[record.ID] = record
	s.order = append(s.order, record.ID)
	out := *record
	return &out, nil
}

func (s *fakeStore) UpdateChat(ctx context.Context, id uuid.UUID, title string, transcript Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStoreDown
	}

	record, exists := s.chats[id]
	if !exists {
		return ErrRecordNotFound
	}
	s.updates++
	record.Title = title
	record.Transcript = append(Transcript(nil), transcript...)
	return nil
}

func (s *fakeStore) DeleteChat(ctx context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStoreDown
	}

	record, exists := s.chats[id]
	if !exists || record.OwnerID != ownerID {
		return ErrRecordNotFound
	}

	delete(s.chats, id)
	kept := s.order[:0]
	for _, existing := range s.order {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.order = kept
	return nil
}

func (s *fakeStore) GetCustomChat(ctx context.Context, ownerID uuid.UUID) (Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}

	transcript, exists := s.custom[ownerID]
	if !exists {
		return nil, ErrRecordNotFound
	}
	return append(Transcript(nil), transcript...), nil
}

func (s *fakeStore) UpsertCustomChat(ctx context.Context, ownerID uuid.UUID, transcript Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStoreDown
	}

	s.custom[ownerID] = append(Transcript(nil), transcript...)
	return nil
}

func (s *fakeStore) DeleteCustomChat(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStoreDown
	}

	delete(s.custom, ownerID)
	return nil
}

func (s *fakeStore) GetPromptTemplate(ctx context.Context, ownerID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return "", errStoreDown
	}

	template, exists := s.templates[ownerID]
	if !exists {
		return "", ErrRecordNotFound
	}
	return template, nil
}

func (s *fakeStore) UpsertPromptTemplate(ctx context.Context, ownerID uuid.UUID, template string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errStoreDown
	}

	s.templates[ownerID] = template
	return nil
}
