package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formcraft/internal/domain"
	"formcraft/internal/editor"
	"formcraft/internal/logger"
	"formcraft/internal/repository"
	"formcraft/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo forms in the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.Get()

		store, closeStore, err := repository.OpenDocumentStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore(ctx)

		forms := service.NewFormService(repository.NewFormRepository(store), nil, cfg)

		drafts, err := demoDrafts(time.Now())
		if err != nil {
			return err
		}
		for _, draft := range drafts {
			form, err := forms.CreateForm(ctx, draft)
			if err != nil {
				log.Error("Failed to seed form", zap.String("title", draft.Title), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", form.ID, form.Title)
		}
		log.Info("Seeding completed", zap.Int("forms", len(drafts)))
		return nil
	},
}

// addQuestion appends a question and returns the id the editor gave it.
func addQuestion(s editor.State, t domain.QuestionType, now time.Time) (editor.State, string, error) {
	s, err := editor.Reduce(s, editor.AddQuestion{Type: t, Now: now})
	if err != nil {
		return s, "", err
	}
	return s, s.Questions[len(s.Questions)-1].ID, nil
}

func ptr[T any](v T) *T { return &v }

// demoDrafts builds the demo forms through the editor, the same way the UI
// composes a form before saving it.
func demoDrafts(now time.Time) ([]domain.FormDraft, error) {
	var drafts []domain.FormDraft

	s := editor.NewState()
	s, catID, err := addQuestion(s, domain.QuestionTypeCategorize, now)
	if err != nil {
		return nil, err
	}
	s, clozeID, err := addQuestion(s, domain.QuestionTypeCloze, now)
	if err != nil {
		return nil, err
	}
	s, err = editor.Apply(s,
		editor.SetTitle{Title: "Kitchen basics"},
		editor.SetDescription{Description: "A short warm-up covering food groups and cooking verbs."},
		editor.UpdateQuestion{ID: catID, Title: ptr("Sort the groceries"), Required: ptr(true)},
		editor.SetCategories{ID: catID, Categories: []string{"Fruit", "Vegetable"}},
		editor.SetItems{ID: catID, Items: []domain.CategorizeItem{
			{Text: "Apple", Category: "Fruit"},
			{Text: "Banana", Category: "Fruit"},
			{Text: "Carrot", Category: "Vegetable"},
			{Text: "Spinach", Category: "Vegetable"},
		}},
		editor.UpdateQuestion{ID: clozeID, Title: ptr("Complete the recipe")},
		editor.SetClozeText{ID: clozeID, Text: "First [chop] the onions, then [fry] them until golden."},
	)
	if err != nil {
		return nil, err
	}
	draft, err := s.Draft()
	if err != nil {
		return nil, err
	}
	drafts = append(drafts, draft)

	s = editor.NewState()
	s, readID, err := addQuestion(s, domain.QuestionTypeComprehension, now)
	if err != nil {
		return nil, err
	}
	s, err = editor.Apply(s,
		editor.SetTitle{Title: "Reading check"},
		editor.UpdateQuestion{ID: readID, Title: ptr("Read the passage"), Required: ptr(true)},
		editor.SetComprehension{
			ID:      readID,
			Passage: "The Go programming language was announced in 2009. It was designed at Google to make large codebases easier to work with.",
			Questions: []domain.ComprehensionItem{
				{Question: "When was Go announced?", Options: []string{"2007", "2009", "2011", "2013"}, CorrectAnswer: 1},
				{Question: "Where was Go designed?", Options: []string{"Bell Labs", "Google", "MIT", "Mozilla"}, CorrectAnswer: 1},
			},
		},
	)
	if err != nil {
		return nil, err
	}
	draft, err = s.Draft()
	if err != nil {
		return nil, err
	}
	return append(drafts, draft), nil
}
