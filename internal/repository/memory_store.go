package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"formcraft/internal/domain"
	"formcraft/internal/util"
)

// MemoryStore is a DocumentStore kept in process memory. It is used by tests
// and by the memory storage driver.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.Collection]map[string]domain.Document
	now  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[domain.Collection]map[string]domain.Document),
		now:  time.Now,
	}
}

func (s *MemoryStore) Insert(ctx context.Context, collection domain.Collection, body json.RawMessage) (*domain.Document, error) {
	if err := contextError("insert", ctx.Err()); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	doc := domain.Document{
		ID:        util.NewULID(),
		Body:      append(json.RawMessage(nil), body...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]domain.Document)
	}
	s.docs[collection][doc.ID] = doc
	return copyDocument(doc), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	if err := contextError("find", ctx.Err()); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, notFound(collection, id)
	}
	return copyDocument(doc), nil
}

func (s *MemoryStore) Replace(ctx context.Context, collection domain.Collection, id string, body json.RawMessage) (*domain.Document, error) {
	if err := contextError("replace", ctx.Err()); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, notFound(collection, id)
	}
	doc.Body = append(json.RawMessage(nil), body...)
	doc.UpdatedAt = s.now().UTC()
	s.docs[collection][id] = doc
	return copyDocument(doc), nil
}

func copyDocument(doc domain.Document) *domain.Document {
	doc.Body = append(json.RawMessage(nil), doc.Body...)
	return &doc
}
