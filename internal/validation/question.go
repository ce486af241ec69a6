package validation

import (
	"fmt"
	"strings"

	"formcraft/internal/domain"
)

// ValidateQuestionShape checks a question against the rules of its variant.
// It returns nil or a SHAPE_MISMATCH error listing every offending field,
// with paths relative to the question.
func ValidateQuestionShape(q domain.Question) error {
	var fields []domain.FieldError

	if strings.TrimSpace(q.ID) == "" {
		fields = append(fields, domain.MissingField("id"))
	}
	if strings.TrimSpace(q.Title) == "" {
		fields = append(fields, domain.MissingField("title"))
	}

	if !q.Type.IsValid() {
		fields = append(fields, domain.InvalidFormat("type", fmt.Sprintf("unsupported question type %q", q.Type)))
		return shapeError(q, fields)
	}
	if q.Options == nil || q.Options.QuestionType() != q.Type {
		fields = append(fields, domain.Mismatch("options", fmt.Sprintf("payload does not belong to a %s question", q.Type)))
		return shapeError(q, fields)
	}

	switch opts := q.Options.(type) {
	case domain.CategorizeOptions:
		fields = append(fields, categorizeFields(opts)...)
	case domain.ClozeOptions:
		fields = append(fields, clozeFields(opts)...)
	case domain.ComprehensionOptions:
		fields = append(fields, comprehensionFields(opts)...)
	}

	return shapeError(q, fields)
}

func shapeError(q domain.Question, fields []domain.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return domain.NewShapeMismatchError(fmt.Sprintf("question %q is malformed", q.ID), fields)
}

func categorizeFields(opts domain.CategorizeOptions) []domain.FieldError {
	var fields []domain.FieldError

	if len(opts.Categories) == 0 {
		fields = append(fields, domain.MissingField("options.categories"))
	}
	seen := make(map[string]bool, len(opts.Categories))
	for i, c := range opts.Categories {
		path := fmt.Sprintf("options.categories[%d]", i)
		switch {
		case strings.TrimSpace(c) == "":
			fields = append(fields, domain.MissingField(path))
		case c == domain.UncategorizedCategory:
			fields = append(fields, domain.InvalidFormat(path, fmt.Sprintf("%q is reserved", domain.UncategorizedCategory)))
		case seen[c]:
			fields = append(fields, domain.Duplicate(path, c))
		}
		seen[c] = true
	}

	texts := make(map[string]bool, len(opts.Items))
	for i, item := range opts.Items {
		path := fmt.Sprintf("options.items[%d]", i)
		if strings.TrimSpace(item.Text) == "" {
			fields = append(fields, domain.MissingField(path+".text"))
		} else if texts[item.Text] {
			fields = append(fields, domain.Duplicate(path+".text", item.Text))
		}
		texts[item.Text] = true
		if !opts.HasCategory(item.Category) {
			fields = append(fields, domain.Mismatch(path+".category", fmt.Sprintf("category %q is not defined", item.Category)))
		}
	}
	return fields
}

func clozeFields(opts domain.ClozeOptions) []domain.FieldError {
	var fields []domain.FieldError
	if strings.TrimSpace(opts.Text()) == "" {
		fields = append(fields, domain.MissingField("options.text"))
	}
	blanks := opts.Blanks()
	derived := domain.ExtractBlanks(opts.Text())
	if len(blanks) != len(derived) {
		fields = append(fields, domain.Mismatch("options.blanks", "blanks are out of sync with text"))
		return fields
	}
	for i := range blanks {
		if blanks[i] != derived[i] {
			fields = append(fields, domain.Mismatch("options.blanks", "blanks are out of sync with text"))
			break
		}
	}
	return fields
}

func comprehensionFields(opts domain.ComprehensionOptions) []domain.FieldError {
	var fields []domain.FieldError
	if strings.TrimSpace(opts.Passage) == "" {
		fields = append(fields, domain.MissingField("options.passage"))
	}
	for i, item := range opts.Questions {
		path := fmt.Sprintf("options.questions[%d]", i)
		if strings.TrimSpace(item.Question) == "" {
			fields = append(fields, domain.MissingField(path+".question"))
		}
		if len(item.Options) != domain.ComprehensionOptionCount {
			fields = append(fields, domain.Mismatch(path+".options",
				fmt.Sprintf("expected %d options, got %d", domain.ComprehensionOptionCount, len(item.Options))))
		} else {
			for j, o := range item.Options {
				if strings.TrimSpace(o) == "" {
					fields = append(fields, domain.MissingField(fmt.Sprintf("%s.options[%d]", path, j)))
				}
			}
		}
		if item.CorrectAnswer < 0 || item.CorrectAnswer >= len(item.Options) {
			fields = append(fields, domain.OutOfRange(path+".correctAnswer", item.CorrectAnswer, 0, len(item.Options)-1))
		}
	}
	return fields
}
