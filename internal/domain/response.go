package domain

import (
	"encoding/json"
	"time"
)

// Answer is a respondent's answer to one question. The concrete type follows
// the question's type.
type Answer interface {
	QuestionType() QuestionType
}

// CategorizeAnswer maps a category name (or the uncategorized sentinel) to
// the item texts placed in it.
type CategorizeAnswer map[string][]string

func (CategorizeAnswer) QuestionType() QuestionType { return QuestionTypeCategorize }

// ClozeAnswer holds one entry per blank; nil marks an unfilled blank.
type ClozeAnswer []*string

func (ClozeAnswer) QuestionType() QuestionType { return QuestionTypeCloze }

// UnansweredChoice marks a comprehension sub-question left blank.
const UnansweredChoice = -1

// ComprehensionAnswer holds the selected option index per sub-question.
type ComprehensionAnswer []int

func (ComprehensionAnswer) QuestionType() QuestionType { return QuestionTypeComprehension }

// Response is one respondent's answer set for one form, keyed by canonical
// question id. Responses are never modified after creation.
type Response struct {
	ID          string            `json:"id"`
	FormID      string            `json:"formId"`
	Answers     map[string]Answer `json:"responses"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// StoredResponse is a response read back from storage whose answers have not
// yet been decoded against the form's question types.
type StoredResponse struct {
	ID          string
	FormID      string
	Answers     map[string]json.RawMessage
	SubmittedAt time.Time
}
