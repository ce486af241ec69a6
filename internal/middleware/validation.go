package middleware

import (
	"github.com/gofiber/fiber/v2"

	"formcraft/internal/validation"
)

// ValidationMiddleware runs the JSON Schema checks on request bodies before
// handlers decode them.
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidateFormDraft validates the body of a create-form request.
func (vm *ValidationMiddleware) ValidateFormDraft() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := vm.validator.ValidateFormDraft(c.Body()); err != nil {
			return err // This will be handled by ErrorHandler middleware
		}
		return c.Next()
	}
}

// ValidateResponseSubmission validates the body of a submit-response request.
func (vm *ValidationMiddleware) ValidateResponseSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := vm.validator.ValidateResponseSubmission(c.Body()); err != nil {
			return err
		}
		return c.Next()
	}
}
