package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formcraft/internal/domain"
)

type responseBody struct {
	FormID      string                   `json:"formId"`
	Responses   map[string]domain.Answer `json:"responses"`
	SubmittedAt time.Time                `json:"submittedAt"`
}

type storedResponseBody struct {
	FormID      string                     `json:"formId"`
	Responses   map[string]json.RawMessage `json:"responses"`
	SubmittedAt time.Time                  `json:"submittedAt"`
}

// DocumentResponseRepository implements domain.ResponseRepository on a
// DocumentStore. Responses are written once and never replaced.
type DocumentResponseRepository struct {
	store domain.DocumentStore
	now   func() time.Time
}

// NewResponseRepository creates a response repository on store.
func NewResponseRepository(store domain.DocumentStore) domain.ResponseRepository {
	return &DocumentResponseRepository{store: store, now: time.Now}
}

func (r *DocumentResponseRepository) Create(ctx context.Context, response *domain.Response) error {
	answers := response.Answers
	if answers == nil {
		answers = map[string]domain.Answer{}
	}
	submittedAt := r.now().UTC().Truncate(time.Millisecond)

	body, err := json.Marshal(responseBody{
		FormID:      response.FormID,
		Responses:   answers,
		SubmittedAt: submittedAt,
	})
	if err != nil {
		return domain.NewInternalError("failed to encode response", err)
	}
	doc, err := r.store.Insert(ctx, domain.CollectionResponses, body)
	if err != nil {
		return err
	}
	response.ID = doc.ID
	response.Answers = answers
	response.SubmittedAt = submittedAt
	return nil
}

func (r *DocumentResponseRepository) GetByID(ctx context.Context, id string) (*domain.StoredResponse, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionResponses, id)
	if err != nil {
		return nil, err
	}
	var body storedResponseBody
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("stored response %s is corrupt", id), err)
	}
	if body.Responses == nil {
		body.Responses = map[string]json.RawMessage{}
	}
	submittedAt := body.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = doc.CreatedAt
	}
	return &domain.StoredResponse{
		ID:          doc.ID,
		FormID:      body.FormID,
		Answers:     body.Responses,
		SubmittedAt: submittedAt,
	}, nil
}
