package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcraft/internal/domain"
)

var (
	fruitQuestion = domain.Question{
		ID: "1", Type: domain.QuestionTypeCategorize, Title: "Sort",
		Options: domain.CategorizeOptions{
			Categories: []string{"Fruit", "Veg"},
			Items:      []domain.CategorizeItem{{Text: "Apple", Category: "Fruit"}, {Text: "Leek", Category: "Veg"}},
		},
	}
	catQuestion = domain.Question{
		ID: "2", Type: domain.QuestionTypeCloze, Title: "Fill", Required: true,
		Options: domain.NewClozeOptions("The [cat] sat on the [mat]"),
	}
	readQuestion = domain.Question{
		ID: "3", Type: domain.QuestionTypeComprehension, Title: "Read",
		Options: domain.ComprehensionOptions{
			Passage: "p",
			Questions: []domain.ComprehensionItem{
				{Question: "a?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1},
				{Question: "b?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 2},
			},
		},
	}
)

func TestValidateAnswerShape_Categorize(t *testing.T) {
	answer, err := ValidateAnswerShape(fruitQuestion, json.RawMessage(`{"Fruit":["Apple"],"uncategorized":[]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.CategorizeAnswer{"Fruit": {"Apple"}, "uncategorized": {}}, answer)

	_, err = ValidateAnswerShape(fruitQuestion, json.RawMessage(`{"Meat":["Apple"]}`))
	require.Error(t, err)
	assert.Equal(t, domain.CodeShapeMismatch, domain.KindOf(err))
	assert.Equal(t, []string{"Meat"}, fieldNames(err))
}

func TestValidateAnswerShape_CategorizeItems(t *testing.T) {
	_, err := ValidateAnswerShape(fruitQuestion, json.RawMessage(`{"Fruit":["Apple","Steak"],"Veg":["Apple"]}`))
	require.Error(t, err)
	fields := domain.FieldsOf(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "Fruit[1]", fields[0].Field)
	assert.Equal(t, domain.CodeShapeMismatch, fields[0].Code)
	assert.Equal(t, "Veg[0]", fields[1].Field)
	assert.Equal(t, domain.CodeDuplicate, fields[1].Code)

	_, err = ValidateAnswerShape(fruitQuestion, json.RawMessage(`["Apple"]`))
	assert.Equal(t, domain.CodeShapeMismatch, domain.KindOf(err))
}

func TestValidateAnswerShape_Cloze(t *testing.T) {
	answer, err := ValidateAnswerShape(catQuestion, json.RawMessage(`["cat", null]`))
	require.NoError(t, err)
	cloze := answer.(domain.ClozeAnswer)
	require.Len(t, cloze, 2)
	assert.Equal(t, "cat", *cloze[0])
	assert.Nil(t, cloze[1])

	for _, raw := range []string{`["cat"]`, `["a","b","c"]`, `[1, 2]`, `"cat"`, `null`} {
		_, err := ValidateAnswerShape(catQuestion, json.RawMessage(raw))
		assert.Equal(t, domain.CodeShapeMismatch, domain.KindOf(err), raw)
	}
}

func TestValidateAnswerShape_Comprehension(t *testing.T) {
	answer, err := ValidateAnswerShape(readQuestion, json.RawMessage(`[1, -1]`))
	require.NoError(t, err)
	assert.Equal(t, domain.ComprehensionAnswer{1, -1}, answer)

	_, err = ValidateAnswerShape(readQuestion, json.RawMessage(`[4, -2]`))
	require.Error(t, err)
	assert.Equal(t, []string{"[0]", "[1]"}, fieldNames(err))

	_, err = ValidateAnswerShape(readQuestion, json.RawMessage(`[1]`))
	assert.Equal(t, domain.CodeShapeMismatch, domain.KindOf(err))
}

func TestIsAnswered(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.True(t, IsAnswered(fruitQuestion, domain.CategorizeAnswer{"Fruit": {"Apple"}}))
	assert.False(t, IsAnswered(fruitQuestion, domain.CategorizeAnswer{"uncategorized": {"Apple"}}))
	assert.False(t, IsAnswered(fruitQuestion, domain.CategorizeAnswer{}))

	assert.True(t, IsAnswered(catQuestion, domain.ClozeAnswer{nil, s("mat")}))
	assert.False(t, IsAnswered(catQuestion, domain.ClozeAnswer{nil, s("  ")}))

	assert.True(t, IsAnswered(readQuestion, domain.ComprehensionAnswer{-1, 0}))
	assert.False(t, IsAnswered(readQuestion, domain.ComprehensionAnswer{-1, -1}))

	empty := domain.Question{ID: "4", Type: domain.QuestionTypeCloze, Title: "No blanks", Options: domain.NewClozeOptions("plain")}
	assert.True(t, IsAnswered(empty, domain.ClozeAnswer{}))
}
