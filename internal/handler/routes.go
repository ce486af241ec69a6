package handler

import (
	"github.com/gofiber/fiber/v2"

	"formcraft/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Forms     *FormHandler
	Responses *ResponseHandler
	Health    *HealthHandler
}

// RegisterRoutes mounts the API under /api plus the health check.
func RegisterRoutes(app *fiber.App, h Handlers, vm *middleware.ValidationMiddleware) {
	app.Get("/health", h.Health.Health)

	api := app.Group("/api")

	forms := api.Group("/forms")
	forms.Post("/", vm.ValidateFormDraft(), h.Forms.CreateForm)
	forms.Get("/:id", h.Forms.GetForm)
	forms.Post("/:id/headerImage", h.Forms.UpdateHeaderImage)

	responses := api.Group("/responses")
	responses.Post("/", vm.ValidateResponseSubmission(), h.Responses.SubmitResponse)
	responses.Get("/:id", h.Responses.GetResponse)
}
