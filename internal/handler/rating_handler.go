package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/dto"
	"github.com/Polyratings/polyratings-api/internal/service"
	"github.com/Polyratings/polyratings-api/internal/utils"
)

// RatingHandler serves rating submission and abuse-report endpoints.
type RatingHandler struct {
	submissions service.SubmissionService
	reports     service.ReportService
	logger      zerolog.Logger
}

// NewRatingHandler constructs the handler.
func NewRatingHandler(submissions service.SubmissionService, reports service.ReportService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		submissions: submissions,
		reports:     reports,
		logger:      logger.With().Str("component", "rating_handler").Logger(),
	}
}

// Register wires rating routes under the professors group.
func (h *RatingHandler) Register(router fiber.Router) {
	router.Post("/:id/ratings", h.submit)
	router.Post("/:id/ratings/:ratingId/report", h.report)
}

func (h *RatingHandler) submit(c *fiber.Ctx) error {
	var payload dto.RatingSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ProfessorID = c.Params("id")

	professor, err := h.submissions.Submit(c.Context(), payload)
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "rating accepted", professor)
}

func (h *RatingHandler) report(c *fiber.Ctx) error {
	var payload dto.ReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ProfessorID = c.Params("id")
	payload.RatingID = c.Params("ratingId")

	if err := h.reports.Report(c.Context(), payload); err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "report received", nil)
}
