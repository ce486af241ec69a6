package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// QuestionType is the closed set of question variants.
type QuestionType string

const (
	QuestionTypeCategorize    QuestionType = "categorize"
	QuestionTypeCloze         QuestionType = "cloze"
	QuestionTypeComprehension QuestionType = "comprehension"
)

// UncategorizedCategory is the sentinel bucket for items that have not been
// placed in a category.
const UncategorizedCategory = "uncategorized"

// ComprehensionOptionCount is the number of choices every comprehension
// sub-question carries.
const ComprehensionOptionCount = 4

// QuestionTypes lists the supported variants in display order.
var QuestionTypes = []QuestionType{
	QuestionTypeCategorize,
	QuestionTypeCloze,
	QuestionTypeComprehension,
}

// IsValid reports whether t is one of the supported variants.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeCategorize, QuestionTypeCloze, QuestionTypeComprehension:
		return true
	}
	return false
}

// Options is the variant payload of a question. Exactly one implementation
// exists per QuestionType.
type Options interface {
	QuestionType() QuestionType
}

// CategorizeItem is an item the respondent sorts into a category.
type CategorizeItem struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// CategorizeOptions is the payload of a categorize question.
type CategorizeOptions struct {
	Categories []string         `json:"categories"`
	Items      []CategorizeItem `json:"items"`
}

func (CategorizeOptions) QuestionType() QuestionType { return QuestionTypeCategorize }

// HasCategory reports whether name is a declared category or the sentinel.
func (o CategorizeOptions) HasCategory(name string) bool {
	if name == UncategorizedCategory {
		return true
	}
	for _, c := range o.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ComprehensionItem is a multiple-choice question about the passage.
type ComprehensionItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// ComprehensionOptions is the payload of a comprehension question.
type ComprehensionOptions struct {
	Passage   string              `json:"passage"`
	Questions []ComprehensionItem `json:"questions"`
}

func (ComprehensionOptions) QuestionType() QuestionType { return QuestionTypeComprehension }

// Question is a single prompt within a form.
type Question struct {
	ID          string
	Type        QuestionType
	Title       string
	Description string
	Required    bool
	Image       string
	Options     Options
}

// NewQuestion creates a question carrying the empty payload of its variant.
func NewQuestion(id string, qType QuestionType, title string) Question {
	return Question{
		ID:      id,
		Type:    qType,
		Title:   title,
		Options: EmptyOptions(qType),
	}
}

// EmptyOptions returns the initial payload for a question type, or nil for an
// unknown type.
func EmptyOptions(qType QuestionType) Options {
	switch qType {
	case QuestionTypeCategorize:
		return CategorizeOptions{Categories: []string{}, Items: []CategorizeItem{}}
	case QuestionTypeCloze:
		return NewClozeOptions("")
	case QuestionTypeComprehension:
		return ComprehensionOptions{Questions: []ComprehensionItem{}}
	}
	return nil
}

// Categorize returns the categorize payload or a SHAPE_MISMATCH error.
func (q Question) Categorize() (CategorizeOptions, error) {
	if opts, ok := q.Options.(CategorizeOptions); ok && q.Type == QuestionTypeCategorize {
		return opts, nil
	}
	return CategorizeOptions{}, q.mismatch(QuestionTypeCategorize)
}

// Cloze returns the cloze payload or a SHAPE_MISMATCH error.
func (q Question) Cloze() (ClozeOptions, error) {
	if opts, ok := q.Options.(ClozeOptions); ok && q.Type == QuestionTypeCloze {
		return opts, nil
	}
	return ClozeOptions{}, q.mismatch(QuestionTypeCloze)
}

// Comprehension returns the comprehension payload or a SHAPE_MISMATCH error.
func (q Question) Comprehension() (ComprehensionOptions, error) {
	if opts, ok := q.Options.(ComprehensionOptions); ok && q.Type == QuestionTypeComprehension {
		return opts, nil
	}
	return ComprehensionOptions{}, q.mismatch(QuestionTypeComprehension)
}

func (q Question) mismatch(want QuestionType) error {
	return NewShapeMismatchError(
		fmt.Sprintf("question %s is of type %q, not %q", q.ID, q.Type, want),
		[]FieldError{Mismatch("options", fmt.Sprintf("%s payload is not valid for type %q", want, q.Type))},
	)
}

type questionJSON struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Image       string          `json:"image"`
	Options     json.RawMessage `json:"options"`
}

// MarshalJSON writes options next to their type tag.
func (q Question) MarshalJSON() ([]byte, error) {
	opts := q.Options
	if opts == nil {
		opts = EmptyOptions(q.Type)
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Title:       q.Title,
		Description: q.Description,
		Required:    q.Required,
		Image:       q.Image,
		Options:     raw,
	})
}

// UnmarshalJSON decodes a stored question, dispatching options on type.
func (q *Question) UnmarshalJSON(data []byte) error {
	var aux questionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Type.IsValid() {
		return NewShapeMismatchError("unsupported question type",
			[]FieldError{InvalidFormat("type", fmt.Sprintf("unsupported question type %q", aux.Type))})
	}
	opts, err := DecodeOptions(aux.Type, aux.Options)
	if err != nil {
		return err
	}
	*q = Question{
		ID:          aux.ID,
		Type:        aux.Type,
		Title:       aux.Title,
		Description: aux.Description,
		Required:    aux.Required,
		Image:       aux.Image,
		Options:     opts,
	}
	return nil
}

// DecodeOptions strictly decodes a variant payload for qType. Fields that are
// not part of the variant are rejected with SHAPE_MISMATCH.
func DecodeOptions(qType QuestionType, raw json.RawMessage) (Options, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if opts := EmptyOptions(qType); opts != nil {
			return opts, nil
		}
	}

	var target any
	switch qType {
	case QuestionTypeCategorize:
		target = &CategorizeOptions{}
	case QuestionTypeCloze:
		target = &clozeJSON{}
	case QuestionTypeComprehension:
		target = &ComprehensionOptions{}
	default:
		return nil, NewShapeMismatchError("unsupported question type",
			[]FieldError{InvalidFormat("type", fmt.Sprintf("unsupported question type %q", qType))})
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, NewShapeMismatchError(
			fmt.Sprintf("options do not match question type %q", qType),
			[]FieldError{decodeFieldError("options", qType, err)},
		)
	}

	switch t := target.(type) {
	case *CategorizeOptions:
		if t.Categories == nil {
			t.Categories = []string{}
		}
		if t.Items == nil {
			t.Items = []CategorizeItem{}
		}
		return *t, nil
	case *clozeJSON:
		return NewClozeOptions(t.Text), nil
	case *ComprehensionOptions:
		if t.Questions == nil {
			t.Questions = []ComprehensionItem{}
		}
		return *t, nil
	}
	return nil, NewInternalError("unreachable options target", nil)
}

func decodeFieldError(prefix string, qType QuestionType, err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Mismatch(joinPath(prefix, typeErr.Field), fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value))
	}
	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		name := strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`)
		return UnknownField(joinPath(prefix, name), fmt.Sprintf("not a field of %s options", qType))
	}
	return Mismatch(prefix, err.Error())
}
