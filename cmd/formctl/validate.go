package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formcraft/internal/domain"
	"formcraft/internal/dto"
	"formcraft/internal/util"
	"formcraft/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a form draft JSON file without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		v, err := validation.NewValidator()
		if err != nil {
			return err
		}
		form, err := checkDraft(v, body)
		if err != nil {
			out := cmd.ErrOrStderr()
			fmt.Fprintf(out, "%s: %s\n", domain.KindOf(err), err)
			for _, f := range domain.FieldsOf(err) {
				fmt.Fprintf(out, "  %s\t%s\t%s\n", f.Field, f.Code, f.Message)
			}
			return fmt.Errorf("%s is not a valid form draft", args[0])
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ok: %q with %d questions\n", form.Title, len(form.Questions))
		return nil
	},
}

// checkDraft runs the same checks as POST /api/forms.
func checkDraft(v *validation.Validator, body []byte) (*domain.Form, error) {
	if err := v.ValidateFormDraft(body); err != nil {
		return nil, err
	}
	var req dto.CreateFormRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, domain.NewValidationError("form draft could not be decoded",
			[]domain.FieldError{domain.InvalidFormat("body", err.Error())})
	}
	return validation.BuildForm(req.ToDraft(), util.NewULID)
}
