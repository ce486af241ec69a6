package handler

import (
	"github.com/gofiber/fiber/v2"

	"formcraft/internal/dto"
	"formcraft/internal/service"
)

// ResponseHandler handles response submission HTTP requests
type ResponseHandler struct {
	service service.ResponseService
}

// NewResponseHandler creates a new ResponseHandler instance
func NewResponseHandler(service service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		service: service,
	}
}

// SubmitResponse godoc
// @Summary Submit a response
// @Description Stores one respondent's answers after checking them against the form.
// @Tags responses
// @Accept json
// @Produce json
// @Param response body dto.SubmitResponseRequest true "Answers"
// @Success 201 {object} dto.ResponseResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) SubmitResponse(c *fiber.Ctx) error {
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	response, err := h.service.CreateResponse(c.UserContext(), req.FormID, req.Responses)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewResponseResponse(response))
}

// GetResponse godoc
// @Summary Get a response
// @Tags responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} dto.ResponseResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *fiber.Ctx) error {
	response, err := h.service.GetResponse(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewResponseResponse(response))
}
