package handlers

import (
	"github.com/gofiber/fiber/v2"

	"dialect-runner-server/models"
	"dialect-runner-server/services"
)

const serviceVersion = "1.0.0"

type ExecuteHandler struct {
	service *services.ExecuteService
}

func NewExecuteHandler(svc *services.ExecuteService) *ExecuteHandler {
	return &ExecuteHandler{service: svc}
}

// Execute godoc
// @Summary Execute Machine Dialect code
// @Description Compile and run Machine Dialect source text and return a uniform result
// @Tags execution
// @Accept json
// @Produce json
// @Param request body models.ExecuteRequest true "Source to execute"
// @Success 200 {object} models.ExecuteResponse
// @Failure 400 {object} models.ExecuteResponse
// @Failure 500 {object} models.ExecuteResponse
// @Router /execute [post]
func (h *ExecuteHandler) Execute(c *fiber.Ctx) error {
	var req models.ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse("Invalid request body"))
	}

	resp, kind, verr := h.service.Execute(c.Context(), &req)
	if verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse(verr.Message))
	}

	// Program failures stay 200; only service/runtime malfunction moves
	// the status class. The body shape is identical either way.
	status := fiber.StatusOK
	if kind == models.OutcomeInternalError {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(resp)
}

// Root godoc
// @Summary Service metadata
// @Description Name, version and docs location for the service
// @Tags meta
// @Produce json
// @Success 200 {object} models.ServiceInfo
// @Router / [get]
func (h *ExecuteHandler) Root(c *fiber.Ctx) error {
	return c.JSON(models.ServiceInfo{
		Message:     "Machine Dialect Runner API",
		Description: "Send Machine Dialect code to the /execute endpoint",
		Version:     serviceVersion,
		Docs:        "/swagger/index.html",
	})
}

// Health godoc
// @Summary Liveness check
// @Description Liveness signal only; never touches the language runtime
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *ExecuteHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "UP", "service": "dialect-runner"})
}

func errorResponse(message string) models.ExecuteResponse {
	return models.ExecuteResponse{Success: false, Error: &message}
}
