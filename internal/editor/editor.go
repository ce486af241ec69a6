// Package editor holds the form-builder draft state and the reducer that
// applies edits to it. Every action returns a new State; the input is never
// modified, so any earlier State can be kept as an undo point.
package editor

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"formcraft/internal/domain"
	"formcraft/internal/validation"
)

// State is the editable draft of a form.
type State struct {
	Title       string
	Description string
	HeaderImage string
	Questions   []domain.Question
}

// NewState returns an empty draft with the default title.
func NewState() State {
	return State{Title: domain.DefaultFormTitle, Questions: []domain.Question{}}
}

// Action is one edit applied by Reduce.
type Action interface {
	apply(State) (State, error)
}

// Reduce applies a to s and returns the resulting state. On error s is
// returned unchanged.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s.clone())
	if err != nil {
		return s, err
	}
	return next, nil
}

// Apply runs actions in order and stops at the first failure.
func Apply(s State, actions ...Action) (State, error) {
	for _, a := range actions {
		var err error
		if s, err = Reduce(s, a); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Draft converts the state into the payload accepted by form creation.
func (s State) Draft() (domain.FormDraft, error) {
	draft := domain.FormDraft{
		Title:       s.Title,
		Description: s.Description,
		HeaderImage: s.HeaderImage,
		Questions:   make([]domain.QuestionDraft, 0, len(s.Questions)),
	}
	for _, q := range s.Questions {
		raw, err := json.Marshal(q.Options)
		if err != nil {
			return domain.FormDraft{}, fmt.Errorf("marshal options of question %s: %w", q.ID, err)
		}
		draft.Questions = append(draft.Questions, domain.QuestionDraft{
			ID:          q.ID,
			Type:        q.Type,
			Title:       q.Title,
			Description: q.Description,
			Required:    q.Required,
			Image:       q.Image,
			Options:     raw,
		})
	}
	return draft, nil
}

func (s State) clone() State {
	s.Questions = slices.Clone(s.Questions)
	if s.Questions == nil {
		s.Questions = []domain.Question{}
	}
	return s
}

func (s State) indexOf(id string) (int, error) {
	i := slices.IndexFunc(s.Questions, func(q domain.Question) bool { return q.ID == id })
	if i < 0 {
		return -1, domain.NewNotFoundError(fmt.Sprintf("question %s not found in draft", id))
	}
	return i, nil
}

// SetTitle replaces the form title.
type SetTitle struct{ Title string }

func (a SetTitle) apply(s State) (State, error) {
	s.Title = a.Title
	return s, nil
}

// SetDescription replaces the form description.
type SetDescription struct{ Description string }

func (a SetDescription) apply(s State) (State, error) {
	s.Description = a.Description
	return s, nil
}

// SetHeaderImage replaces the header image reference. An empty Ref removes it.
type SetHeaderImage struct{ Ref string }

func (a SetHeaderImage) apply(s State) (State, error) {
	s.HeaderImage = a.Ref
	return s, nil
}

// AddQuestion appends a question of Type with the empty payload of its
// variant. Its id is q_<unix-millis of Now>, bumped until unique.
type AddQuestion struct {
	Type domain.QuestionType
	Now  time.Time
}

func (a AddQuestion) apply(s State) (State, error) {
	if !a.Type.IsValid() {
		return s, domain.NewShapeMismatchError("cannot add question",
			[]domain.FieldError{domain.InvalidFormat("type", fmt.Sprintf("unsupported question type %q", a.Type))})
	}
	millis := a.Now.UnixMilli()
	id := validation.ClientQuestionIDPrefix + strconv.FormatInt(millis, 10)
	for {
		if _, err := s.indexOf(id); err != nil {
			break
		}
		millis++
		id = validation.ClientQuestionIDPrefix + strconv.FormatInt(millis, 10)
	}
	s.Questions = append(s.Questions, domain.NewQuestion(id, a.Type, fmt.Sprintf("New %s Question", a.Type)))
	return s, nil
}

// UpdateQuestion changes the common fields of a question. Nil fields are left
// as they are. The question type cannot be changed.
type UpdateQuestion struct {
	ID          string
	Title       *string
	Description *string
	Required    *bool
	Image       *string
}

func (a UpdateQuestion) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	q := s.Questions[i]
	if a.Title != nil {
		q.Title = *a.Title
	}
	if a.Description != nil {
		q.Description = *a.Description
	}
	if a.Required != nil {
		q.Required = *a.Required
	}
	if a.Image != nil {
		q.Image = *a.Image
	}
	s.Questions[i] = q
	return s, nil
}

// SetClozeText replaces the text of a cloze question and recomputes its blanks.
type SetClozeText struct {
	ID   string
	Text string
}

func (a SetClozeText) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	opts, err := s.Questions[i].Cloze()
	if err != nil {
		return s, err
	}
	s.Questions[i].Options = opts.WithText(a.Text)
	return s, nil
}

// SetCategories replaces the categories of a categorize question. Items whose
// category was removed fall back to the uncategorized bucket.
type SetCategories struct {
	ID         string
	Categories []string
}

func (a SetCategories) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	opts, err := s.Questions[i].Categorize()
	if err != nil {
		return s, err
	}
	next := domain.CategorizeOptions{
		Categories: append([]string{}, a.Categories...),
		Items:      make([]domain.CategorizeItem, len(opts.Items)),
	}
	for j, item := range opts.Items {
		if !next.HasCategory(item.Category) {
			item.Category = domain.UncategorizedCategory
		}
		next.Items[j] = item
	}
	s.Questions[i].Options = next
	return s, nil
}

// SetItems replaces the items of a categorize question. Items without a
// category are placed in the uncategorized bucket.
type SetItems struct {
	ID    string
	Items []domain.CategorizeItem
}

func (a SetItems) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	opts, err := s.Questions[i].Categorize()
	if err != nil {
		return s, err
	}
	next := domain.CategorizeOptions{
		Categories: slices.Clone(opts.Categories),
		Items:      make([]domain.CategorizeItem, len(a.Items)),
	}
	for j, item := range a.Items {
		if item.Category == "" {
			item.Category = domain.UncategorizedCategory
		}
		next.Items[j] = item
	}
	s.Questions[i].Options = next
	return s, nil
}

// SetComprehension replaces the passage and sub-questions of a comprehension
// question.
type SetComprehension struct {
	ID        string
	Passage   string
	Questions []domain.ComprehensionItem
}

func (a SetComprehension) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	if _, err := s.Questions[i].Comprehension(); err != nil {
		return s, err
	}
	items := make([]domain.ComprehensionItem, len(a.Questions))
	for j, item := range a.Questions {
		item.Options = slices.Clone(item.Options)
		items[j] = item
	}
	s.Questions[i].Options = domain.ComprehensionOptions{Passage: a.Passage, Questions: items}
	return s, nil
}

// MoveQuestion moves the question with ID to position To, shifting the
// questions in between.
type MoveQuestion struct {
	ID string
	To int
}

func (a MoveQuestion) apply(s State) (State, error) {
	from, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	if a.To < 0 || a.To >= len(s.Questions) {
		return s, domain.NewValidationError("cannot move question",
			[]domain.FieldError{domain.OutOfRange("to", a.To, 0, len(s.Questions)-1)})
	}
	q := s.Questions[from]
	s.Questions = slices.Delete(s.Questions, from, from+1)
	s.Questions = slices.Insert(s.Questions, a.To, q)
	return s, nil
}

// DeleteQuestion removes a question from the draft.
type DeleteQuestion struct{ ID string }

func (a DeleteQuestion) apply(s State) (State, error) {
	i, err := s.indexOf(a.ID)
	if err != nil {
		return s, err
	}
	s.Questions = slices.Delete(s.Questions, i, i+1)
	return s, nil
}
