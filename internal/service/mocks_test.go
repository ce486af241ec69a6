package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"formcraft/internal/domain"
)

// --- Mocks ---

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

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *domain.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, id string) (*domain.StoredResponse, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.StoredResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}
