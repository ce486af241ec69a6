package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultFormTitle is used when a draft arrives without a title.
const DefaultFormTitle = "Untitled Form"

// Form is an ordered collection of questions plus display metadata.
// Question order is display and numbering order.
type Form struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HeaderImage string     `json:"headerImage"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ApplyDefaults fills the defaults of an unsaved form.
func (f *Form) ApplyDefaults() {
	if strings.TrimSpace(f.Title) == "" {
		f.Title = DefaultFormTitle
	}
	if f.Questions == nil {
		f.Questions = []Question{}
	}
}

// QuestionByID looks up a question by its canonical id.
func (f *Form) QuestionByID(id string) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// QuestionDraft is a question as submitted by a client, before its options
// have been decoded against its type.
type QuestionDraft struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	Image       string          `json:"image"`
	Options     json.RawMessage `json:"options"`
}

// FormDraft is the client payload for creating a form.
type FormDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	HeaderImage string          `json:"headerImage"`
	Questions   []QuestionDraft `json:"questions"`
}
