package repository

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"formcraft/internal/domain"
)

// MockDocumentStore is a mock type for domain.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Insert(ctx context.Context, collection domain.Collection, body json.RawMessage) (*domain.Document, error) {
	args := m.Called(ctx, collection, body)
	if doc := args.Get(0); doc != nil {
		return doc.(*domain.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) FindByID(ctx context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	args := m.Called(ctx, collection, id)
	if doc := args.Get(0); doc != nil {
		return doc.(*domain.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) Replace(ctx context.Context, collection domain.Collection, id string, body json.RawMessage) (*domain.Document, error) {
	args := m.Called(ctx, collection, id, body)
	if doc := args.Get(0); doc != nil {
		return doc.(*domain.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockFormRepository is a mock type for domain.FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id string) (*domain.Form, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*domain.Form), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFormRepository) UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*domain.Form, error) {
	args := m.Called(ctx, id, imageRef)
	if f := args.Get(0); f != nil {
		return f.(*domain.Form), args.Error(1)
	}
	return nil, args.Error(1)
}
