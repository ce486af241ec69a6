package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"formcraft/internal/domain"
)

// ValidateAnswerShape decodes raw as the answer type of q and checks it
// against the question's payload. It returns the typed answer, or a
// SHAPE_MISMATCH error listing every offending entry with paths relative to
// the answer.
func ValidateAnswerShape(q domain.Question, raw json.RawMessage) (domain.Answer, error) {
	switch q.Type {
	case domain.QuestionTypeCategorize:
		opts, err := q.Categorize()
		if err != nil {
			return nil, err
		}
		return validateCategorizeAnswer(q, opts, raw)
	case domain.QuestionTypeCloze:
		opts, err := q.Cloze()
		if err != nil {
			return nil, err
		}
		return validateClozeAnswer(q, opts, raw)
	case domain.QuestionTypeComprehension:
		opts, err := q.Comprehension()
		if err != nil {
			return nil, err
		}
		return validateComprehensionAnswer(q, opts, raw)
	}
	return nil, domain.NewShapeMismatchError(fmt.Sprintf("question %q has unsupported type %q", q.ID, q.Type), nil)
}

func answerError(q domain.Question, fields []domain.FieldError) error {
	return domain.NewShapeMismatchError(fmt.Sprintf("answer to question %q does not match its %s shape", q.ID, q.Type), fields)
}

func decodeAnswer(raw json.RawMessage, target any) error {
	return json.Unmarshal(raw, target)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func validateCategorizeAnswer(q domain.Question, opts domain.CategorizeOptions, raw json.RawMessage) (domain.Answer, error) {
	var answer domain.CategorizeAnswer
	if isNull(raw) || decodeAnswer(raw, &answer) != nil {
		return nil, answerError(q, []domain.FieldError{
			domain.Mismatch("", "expected an object mapping category names to lists of item texts"),
		})
	}

	items := make(map[string]bool, len(opts.Items))
	for _, item := range opts.Items {
		items[item.Text] = true
	}

	var fields []domain.FieldError
	placed := make(map[string]bool)
	for _, category := range slices.Sorted(maps.Keys(answer)) {
		if !opts.HasCategory(category) {
			fields = append(fields, domain.Mismatch(category, fmt.Sprintf("category %q is not defined", category)))
			continue
		}
		if answer[category] == nil {
			answer[category] = []string{}
		}
		for i, text := range answer[category] {
			path := fmt.Sprintf("%s[%d]", category, i)
			switch {
			case !items[text]:
				fields = append(fields, domain.Mismatch(path, fmt.Sprintf("item %q is not part of the question", text)))
			case placed[text]:
				fields = append(fields, domain.Duplicate(path, text))
			}
			placed[text] = true
		}
	}

	if len(fields) > 0 {
		return nil, answerError(q, fields)
	}
	return answer, nil
}

func validateClozeAnswer(q domain.Question, opts domain.ClozeOptions, raw json.RawMessage) (domain.Answer, error) {
	var answer domain.ClozeAnswer
	if isNull(raw) || decodeAnswer(raw, &answer) != nil {
		return nil, answerError(q, []domain.FieldError{
			domain.Mismatch("", "expected a list of strings or nulls, one per blank"),
		})
	}
	if len(answer) != opts.BlankCount() {
		return nil, answerError(q, []domain.FieldError{
			domain.Mismatch("", fmt.Sprintf("expected %d entries, one per blank, got %d", opts.BlankCount(), len(answer))),
		})
	}
	return answer, nil
}

func validateComprehensionAnswer(q domain.Question, opts domain.ComprehensionOptions, raw json.RawMessage) (domain.Answer, error) {
	var answer domain.ComprehensionAnswer
	if isNull(raw) || decodeAnswer(raw, &answer) != nil {
		return nil, answerError(q, []domain.FieldError{
			domain.Mismatch("", "expected a list of option indexes, one per sub-question"),
		})
	}
	if len(answer) != len(opts.Questions) {
		return nil, answerError(q, []domain.FieldError{
			domain.Mismatch("", fmt.Sprintf("expected %d entries, one per sub-question, got %d", len(opts.Questions), len(answer))),
		})
	}

	var fields []domain.FieldError
	for i, choice := range answer {
		maxChoice := len(opts.Questions[i].Options) - 1
		if choice < domain.UnansweredChoice || choice > maxChoice {
			fields = append(fields, domain.OutOfRange(fmt.Sprintf("[%d]", i), choice, domain.UnansweredChoice, maxChoice))
		}
	}
	if len(fields) > 0 {
		return nil, answerError(q, fields)
	}
	return answer, nil
}

// IsAnswered reports whether a validated answer counts as a non-empty answer
// to q for the purpose of required-question checks.
func IsAnswered(q domain.Question, answer domain.Answer) bool {
	switch a := answer.(type) {
	case domain.CategorizeAnswer:
		if opts, err := q.Categorize(); err == nil && len(opts.Items) == 0 {
			return true
		}
		for category, texts := range a {
			if category != domain.UncategorizedCategory && len(texts) > 0 {
				return true
			}
		}
	case domain.ClozeAnswer:
		if len(a) == 0 {
			return true
		}
		for _, entry := range a {
			if entry != nil && strings.TrimSpace(*entry) != "" {
				return true
			}
		}
	case domain.ComprehensionAnswer:
		if len(a) == 0 {
			return true
		}
		for _, choice := range a {
			if choice != domain.UnansweredChoice {
				return true
			}
		}
	}
	return false
}
