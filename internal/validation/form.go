package validation

import (
	"fmt"
	"strings"

	"formcraft/internal/domain"
)

// BuildForm turns a client draft into an unsaved form. Every question is
// decoded against its type, normalized and shape-checked; all problems are
// collected and returned together as one VALIDATION_ERROR. newID supplies an
// id for draft questions that arrive without one.
func BuildForm(draft domain.FormDraft, newID func() string) (*domain.Form, error) {
	form := &domain.Form{
		Title:       draft.Title,
		Description: draft.Description,
		HeaderImage: draft.HeaderImage,
		Questions:   make([]domain.Question, 0, len(draft.Questions)),
	}
	form.ApplyDefaults()

	var fields []domain.FieldError
	seen := make(map[string]int, len(draft.Questions))

	for i, qd := range draft.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)

		if id := NormalizeQuestionID(qd.ID); id != "" {
			if first, dup := seen[id]; dup {
				fields = append(fields, domain.FieldError{
					Field:   prefix + ".id",
					Code:    domain.CodeDuplicate,
					Message: fmt.Sprintf("id %q is already used by questions[%d]", id, first),
				})
			} else {
				seen[id] = i
			}
		}

		q, err := BuildQuestion(qd, newID)
		if err != nil {
			fields = append(fields, domain.PrefixFields(prefix, domain.FieldsOf(err))...)
			continue
		}
		form.Questions = append(form.Questions, q)
	}

	if len(fields) > 0 {
		return nil, domain.NewValidationError("form validation failed", fields)
	}
	return form, nil
}

// BuildQuestion decodes, normalizes and validates a single draft question.
// Errors carry field paths relative to the question.
func BuildQuestion(qd domain.QuestionDraft, newID func() string) (domain.Question, error) {
	id := NormalizeQuestionID(qd.ID)
	if strings.TrimSpace(qd.ID) == "" && newID != nil {
		id = newID()
	}

	if !qd.Type.IsValid() {
		typeErr := domain.InvalidFormat("type", fmt.Sprintf("unsupported question type %q", qd.Type))
		if strings.TrimSpace(string(qd.Type)) == "" {
			typeErr = domain.MissingField("type")
		}
		fields := []domain.FieldError{typeErr}
		if strings.TrimSpace(qd.Title) == "" {
			fields = append(fields, domain.MissingField("title"))
		}
		return domain.Question{}, domain.NewShapeMismatchError("question has an unsupported type", fields)
	}

	opts, err := domain.DecodeOptions(qd.Type, qd.Options)
	if err != nil {
		return domain.Question{}, err
	}

	q := domain.Question{
		ID:          id,
		Type:        qd.Type,
		Title:       qd.Title,
		Description: qd.Description,
		Required:    qd.Required,
		Image:       qd.Image,
		Options:     normalizeOptions(opts),
	}
	if err := ValidateQuestionShape(q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// normalizeOptions files items without a category under the sentinel.
func normalizeOptions(opts domain.Options) domain.Options {
	cat, ok := opts.(domain.CategorizeOptions)
	if !ok {
		return opts
	}
	items := make([]domain.CategorizeItem, len(cat.Items))
	for i, item := range cat.Items {
		if strings.TrimSpace(item.Category) == "" {
			item.Category = domain.UncategorizedCategory
		}
		items[i] = item
	}
	cat.Items = items
	return cat
}
