package domain

import (
	"encoding/json"
	"regexp"
)

// blankPattern matches a bracketed blank. Brackets never nest: the inner text
// may contain neither '[' nor ']'.
var blankPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ExtractBlanks returns the words wrapped in brackets, left to right.
// Duplicates are kept as separate slots.
func ExtractBlanks(text string) []string {
	matches := blankPattern.FindAllStringSubmatch(text, -1)
	blanks := make([]string, 0, len(matches))
	for _, m := range matches {
		blanks = append(blanks, m[1])
	}
	return blanks
}

// ClozeOptions is the payload of a cloze question. Blanks are derived from
// the text and cannot be set independently.
type ClozeOptions struct {
	text   string
	blanks []string
}

// NewClozeOptions builds a cloze payload with blanks extracted from text.
func NewClozeOptions(text string) ClozeOptions {
	return ClozeOptions{text: text, blanks: ExtractBlanks(text)}
}

func (ClozeOptions) QuestionType() QuestionType { return QuestionTypeCloze }

// Text returns the passage with its bracket markers.
func (o ClozeOptions) Text() string { return o.text }

// Blanks returns a copy of the extracted blanks.
func (o ClozeOptions) Blanks() []string {
	out := make([]string, len(o.blanks))
	copy(out, o.blanks)
	return out
}

// BlankCount returns the number of blank slots.
func (o ClozeOptions) BlankCount() int { return len(o.blanks) }

// WithText returns a payload for the new text with blanks recomputed.
func (o ClozeOptions) WithText(text string) ClozeOptions {
	return NewClozeOptions(text)
}

type clozeJSON struct {
	Text   string   `json:"text"`
	Blanks []string `json:"blanks"`
}

func (o ClozeOptions) MarshalJSON() ([]byte, error) {
	blanks := o.blanks
	if blanks == nil {
		blanks = []string{}
	}
	return json.Marshal(clozeJSON{Text: o.text, Blanks: blanks})
}

// UnmarshalJSON ignores any stored blanks and recomputes them from text.
func (o *ClozeOptions) UnmarshalJSON(data []byte) error {
	var aux clozeJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = NewClozeOptions(aux.Text)
	return nil
}
