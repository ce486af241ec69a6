package service

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
	"formcraft/internal/validation"
)

// ResponseService defines the response operations exposed to the HTTP layer.
type ResponseService interface {
	CreateResponse(ctx context.Context, formID string, answers map[string]json.RawMessage) (*domain.Response, error)
	GetResponse(ctx context.Context, id string) (*domain.Response, error)
}

type responseService struct {
	forms     domain.FormRepository
	responses domain.ResponseRepository
	timeout   time.Duration
}

// NewResponseService creates a new instance of responseService.
func NewResponseService(forms domain.FormRepository, responses domain.ResponseRepository, cfg *config.Config) ResponseService {
	return &responseService{
		forms:     forms,
		responses: responses,
		timeout:   cfg.Server.RequestTimeout,
	}
}

func (s *responseService) CreateResponse(ctx context.Context, formID string, answers map[string]json.RawMessage) (*domain.Response, error) {
	return withDeadline(ctx, s.timeout, "create response", func(ctx context.Context) (*domain.Response, error) {
		form, err := s.forms.GetByID(ctx, formID)
		if err != nil {
			return nil, err
		}

		typed, err := checkAnswers(form, answers)
		if err != nil {
			return nil, err
		}

		response := &domain.Response{FormID: form.ID, Answers: typed}
		if err := s.responses.Create(ctx, response); err != nil {
			return nil, err
		}
		logger.Get().Info("response submitted",
			zap.String("response_id", response.ID),
			zap.String("form_id", form.ID),
			zap.Int("answers", len(typed)))
		return response, nil
	})
}

// checkAnswers normalizes answer keys and validates every answer against the
// form. Key and required-question problems are reported together as
// VALIDATION_ERROR; only when those pass are shape problems reported as
// SHAPE_MISMATCH.
func checkAnswers(form *domain.Form, answers map[string]json.RawMessage) (map[string]domain.Answer, error) {
	var invalid, mismatched []domain.FieldError
	typed := make(map[string]domain.Answer, len(answers))
	present := make(map[string]bool, len(answers))
	rawKeyOf := make(map[string]string, len(answers))

	for _, rawKey := range slices.Sorted(maps.Keys(answers)) {
		id := validation.NormalizeQuestionID(rawKey)
		field := "responses." + rawKey

		if prev, dup := rawKeyOf[id]; dup {
			invalid = append(invalid, domain.FieldError{
				Field:   field,
				Code:    domain.CodeDuplicate,
				Message: fmt.Sprintf("answers question %q, already answered by key %q", id, prev),
			})
			continue
		}
		rawKeyOf[id] = rawKey

		q, ok := form.QuestionByID(id)
		if !ok {
			invalid = append(invalid, domain.UnknownField(field, fmt.Sprintf("form has no question %q", id)))
			continue
		}

		raw := answers[rawKey]
		if isNullAnswer(raw) {
			continue
		}
		present[id] = true

		answer, err := validation.ValidateAnswerShape(q, raw)
		if err != nil {
			mismatched = append(mismatched, domain.PrefixFields("responses."+id, domain.FieldsOf(err))...)
			continue
		}
		typed[id] = answer
	}

	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		if answer, ok := typed[q.ID]; ok && !validation.IsAnswered(q, answer) {
			invalid = append(invalid, domain.FieldError{
				Field:   "responses." + q.ID,
				Code:    domain.CodeMissingField,
				Message: fmt.Sprintf("required question %q has an empty answer", q.Title),
			})
			continue
		}
		if !present[q.ID] {
			invalid = append(invalid, domain.FieldError{
				Field:   "responses." + q.ID,
				Code:    domain.CodeMissingField,
				Message: fmt.Sprintf("required question %q is not answered", q.Title),
			})
		}
	}

	if len(invalid) > 0 {
		return nil, domain.NewValidationError("response validation failed", invalid)
	}
	if len(mismatched) > 0 {
		return nil, domain.NewShapeMismatchError("answers do not match their questions", mismatched)
	}
	return typed, nil
}

func isNullAnswer(raw json.RawMessage) bool {
	var v any
	return len(raw) == 0 || (json.Unmarshal(raw, &v) == nil && v == nil)
}

// GetResponse decodes a stored response against the questions of its form.
func (s *responseService) GetResponse(ctx context.Context, id string) (*domain.Response, error) {
	return withDeadline(ctx, s.timeout, "get response", func(ctx context.Context) (*domain.Response, error) {
		stored, err := s.responses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		form, err := s.forms.GetByID(ctx, stored.FormID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewInternalError(fmt.Sprintf("response %s references missing form %s", id, stored.FormID), err)
			}
			return nil, err
		}

		answers := make(map[string]domain.Answer, len(stored.Answers))
		for qid, raw := range stored.Answers {
			q, ok := form.QuestionByID(qid)
			if !ok {
				return nil, domain.NewInternalError(fmt.Sprintf("response %s answers unknown question %s", id, qid), nil)
			}
			answer, err := validation.ValidateAnswerShape(q, raw)
			if err != nil {
				return nil, domain.NewInternalError(fmt.Sprintf("stored answer %s of response %s is corrupt", qid, id), err)
			}
			answers[qid] = answer
		}

		return &domain.Response{
			ID:          stored.ID,
			FormID:      stored.FormID,
			Answers:     answers,
			SubmittedAt: stored.SubmittedAt,
		}, nil
	})
}
