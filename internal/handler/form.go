package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"formcraft/internal/domain"
	"formcraft/internal/dto"
	"formcraft/internal/service"
)

// FormHandler handles form-related HTTP requests
type FormHandler struct {
	service service.FormService
}

// NewFormHandler creates a new FormHandler instance
func NewFormHandler(service service.FormService) *FormHandler {
	return &FormHandler{
		service: service,
	}
}

// CreateForm godoc
// @Summary Create a form
// @Description Validates and stores a form built in the editor. Question ids are normalized.
// @Tags forms
// @Accept json
// @Produce json
// @Param form body dto.CreateFormRequest true "Form draft"
// @Success 201 {object} dto.FormResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *fiber.Ctx) error {
	var req dto.CreateFormRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	form, err := h.service.CreateForm(c.UserContext(), req.ToDraft())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewFormResponse(form))
}

// GetForm godoc
// @Summary Get a form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} dto.FormResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *fiber.Ctx) error {
	form, err := h.service.GetForm(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFormResponse(form))
}

// UpdateHeaderImage godoc
// @Summary Set the header image of a form
// @Description Accepts a multipart upload in field "image", or a JSON body pointing at an existing image.
// @Tags forms
// @Accept mpfd,json
// @Produce json
// @Param id path string true "Form ID"
// @Param image formData file false "Header image"
// @Success 200 {object} dto.FormResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /forms/{id}/headerImage [post]
func (h *FormHandler) UpdateHeaderImage(c *fiber.Ctx) error {
	id := c.Params("id")

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		var req dto.UpdateHeaderImageRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(err)
		}
		if strings.TrimSpace(req.HeaderImage) == "" {
			return domain.NewValidationError("headerImage is required",
				[]domain.FieldError{domain.MissingField("headerImage")})
		}
		form, err := h.service.UpdateHeaderImage(c.UserContext(), id, req.HeaderImage)
		if err != nil {
			return err
		}
		return c.JSON(dto.NewFormResponse(form))
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return domain.NewValidationError("no image uploaded",
			[]domain.FieldError{domain.MissingField("image")})
	}
	file, err := fh.Open()
	if err != nil {
		return domain.NewInternalError("open uploaded image", err)
	}
	defer file.Close()

	form, err := h.service.ReplaceHeaderImage(c.UserContext(), id, fh.Filename, file)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewFormResponse(form))
}

func invalidBody(err error) error {
	return domain.NewValidationError("request body could not be decoded",
		[]domain.FieldError{domain.InvalidFormat("body", err.Error())})
}
