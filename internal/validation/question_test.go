package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcraft/internal/domain"
)

func fieldNames(err error) []string {
	var names []string
	for _, f := range domain.FieldsOf(err) {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateQuestionShape_Valid(t *testing.T) {
	questions := []domain.Question{
		{
			ID: "1", Type: domain.QuestionTypeCategorize, Title: "Sort",
			Options: domain.CategorizeOptions{
				Categories: []string{"Fruit", "Veg"},
				Items:      []domain.CategorizeItem{{Text: "Apple", Category: "Fruit"}, {Text: "Leek", Category: domain.UncategorizedCategory}},
			},
		},
		{ID: "2", Type: domain.QuestionTypeCloze, Title: "Fill", Options: domain.NewClozeOptions("The [cat] sat")},
		{
			ID: "3", Type: domain.QuestionTypeComprehension, Title: "Read",
			Options: domain.ComprehensionOptions{
				Passage: "Once upon a time",
				Questions: []domain.ComprehensionItem{
					{Question: "When?", Options: []string{"once", "twice", "never", "always"}, CorrectAnswer: 0},
				},
			},
		},
	}
	for _, q := range questions {
		assert.NoError(t, ValidateQuestionShape(q), q.Type)
	}
}

func TestValidateQuestionShape_Categorize(t *testing.T) {
	q := domain.Question{
		ID: "1", Type: domain.QuestionTypeCategorize, Title: "Sort",
		Options: domain.CategorizeOptions{
			Categories: []string{"Fruit", "Fruit", domain.UncategorizedCategory, ""},
			Items: []domain.CategorizeItem{
				{Text: "Apple", Category: "Meat"},
				{Text: "Apple", Category: "Fruit"},
			},
		},
	}
	err := ValidateQuestionShape(q)
	require.Error(t, err)
	assert.Equal(t, domain.CodeShapeMismatch, domain.KindOf(err))
	assert.ElementsMatch(t, []string{
		"options.categories[1]",
		"options.categories[2]",
		"options.categories[3]",
		"options.items[0].category",
		"options.items[1].text",
	}, fieldNames(err))
}

func TestValidateQuestionShape_Comprehension(t *testing.T) {
	q := domain.Question{
		ID: "1", Type: domain.QuestionTypeComprehension, Title: "Read",
		Options: domain.ComprehensionOptions{
			Questions: []domain.ComprehensionItem{
				{Question: "", Options: []string{"a", "b"}, CorrectAnswer: 5},
				{Question: "ok", Options: []string{"a", "", "c", "d"}, CorrectAnswer: 3},
			},
		},
	}
	err := ValidateQuestionShape(q)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{
		"options.passage",
		"options.questions[0].question",
		"options.questions[0].options",
		"options.questions[0].correctAnswer",
		"options.questions[1].options[1]",
	}, fieldNames(err))
}

func TestValidateQuestionShape_MissingBasics(t *testing.T) {
	err := ValidateQuestionShape(domain.Question{Type: domain.QuestionTypeCloze, Options: domain.NewClozeOptions("")})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"id", "title", "options.text"}, fieldNames(err))
}

func TestValidateQuestionShape_VariantMismatch(t *testing.T) {
	q := domain.Question{ID: "1", Type: domain.QuestionTypeCloze, Title: "Fill", Options: domain.CategorizeOptions{}}
	err := ValidateQuestionShape(q)
	require.Error(t, err)
	assert.Equal(t, []string{"options"}, fieldNames(err))
}
