package dto

import (
	"encoding/json"
	"time"

	"formcraft/internal/domain"
)

// QuestionRequest is one question of a create-form request.
// @Description Question draft; options depend on type
type QuestionRequest struct {
	ID          string          `json:"id" example:"q_1718000000000"`
	Type        string          `json:"type" enums:"categorize,cloze,comprehension"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Image       string          `json:"image"`
	Options     json.RawMessage `json:"options" swaggertype:"object"`
}

// CreateFormRequest is the body of POST /api/forms.
// @Description Form draft as produced by the editor
type CreateFormRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HeaderImage string            `json:"headerImage"`
	Questions   []QuestionRequest `json:"questions"`
}

// ToDraft converts the request into the domain draft.
func (r CreateFormRequest) ToDraft() domain.FormDraft {
	draft := domain.FormDraft{
		Title:       r.Title,
		Description: r.Description,
		HeaderImage: r.HeaderImage,
		Questions:   make([]domain.QuestionDraft, len(r.Questions)),
	}
	for i, q := range r.Questions {
		draft.Questions[i] = domain.QuestionDraft{
			ID:          q.ID,
			Type:        domain.QuestionType(q.Type),
			Title:       q.Title,
			Description: q.Description,
			Required:    q.Required,
			Image:       q.Image,
			Options:     q.Options,
		}
	}
	return draft
}

// UpdateHeaderImageRequest sets the header image to an existing reference.
type UpdateHeaderImageRequest struct {
	HeaderImage string `json:"headerImage"`
}

// FormResponse represents a form in the API response
// @Description Stored form. _id mirrors id for older clients.
type FormResponse struct {
	ID          string            `json:"id"`
	LegacyID    string            `json:"_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HeaderImage string            `json:"headerImage"`
	Questions   []domain.Question `json:"questions" swaggertype:"array,object"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func NewFormResponse(f *domain.Form) FormResponse {
	questions := f.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	return FormResponse{
		ID:          f.ID,
		LegacyID:    f.ID,
		Title:       f.Title,
		Description: f.Description,
		HeaderImage: f.HeaderImage,
		Questions:   questions,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
