package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"formcraft/internal/domain"
)

// formBody is the stored document of a form. Identity and timestamps are
// owned by the store.
type formBody struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HeaderImage string            `json:"headerImage"`
	Questions   []domain.Question `json:"questions"`
}

func toFormBody(form *domain.Form) formBody {
	questions := form.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	return formBody{
		Title:       form.Title,
		Description: form.Description,
		HeaderImage: form.HeaderImage,
		Questions:   questions,
	}
}

func toDomainForm(doc *domain.Document) (*domain.Form, error) {
	var body formBody
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("stored form %s is corrupt", doc.ID), err)
	}
	form := &domain.Form{
		ID:          doc.ID,
		Title:       body.Title,
		Description: body.Description,
		HeaderImage: body.HeaderImage,
		Questions:   body.Questions,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	form.ApplyDefaults()
	return form, nil
}

// DocumentFormRepository implements domain.FormRepository on a DocumentStore.
type DocumentFormRepository struct {
	store domain.DocumentStore
}

// NewFormRepository creates a form repository on store.
func NewFormRepository(store domain.DocumentStore) domain.FormRepository {
	return &DocumentFormRepository{store: store}
}

func (r *DocumentFormRepository) Create(ctx context.Context, form *domain.Form) error {
	body, err := json.Marshal(toFormBody(form))
	if err != nil {
		return domain.NewInternalError("failed to encode form", err)
	}
	doc, err := r.store.Insert(ctx, domain.CollectionForms, body)
	if err != nil {
		return err
	}
	form.ID = doc.ID
	form.CreatedAt = doc.CreatedAt
	form.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *DocumentFormRepository) GetByID(ctx context.Context, id string) (*domain.Form, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionForms, id)
	if err != nil {
		return nil, err
	}
	return toDomainForm(doc)
}

func (r *DocumentFormRepository) UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*domain.Form, error) {
	form, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	form.HeaderImage = imageRef

	body, err := json.Marshal(toFormBody(form))
	if err != nil {
		return nil, domain.NewInternalError("failed to encode form", err)
	}
	doc, err := r.store.Replace(ctx, domain.CollectionForms, id, body)
	if err != nil {
		return nil, err
	}
	return toDomainForm(doc)
}
