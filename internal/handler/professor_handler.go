package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/store"
	"github.com/Polyratings/polyratings-api/internal/utils"
)

// ProfessorHandler serves professor read endpoints.
type ProfessorHandler struct {
	repo   *repository.RatingRepository
	logger zerolog.Logger
}

// NewProfessorHandler constructs the handler.
func NewProfessorHandler(repo *repository.RatingRepository, logger zerolog.Logger) *ProfessorHandler {
	return &ProfessorHandler{
		repo:   repo,
		logger: logger.With().Str("component", "professor_handler").Logger(),
	}
}

// Register wires professor routes.
func (h *ProfessorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *ProfessorHandler) list(c *fiber.Ctx) error {
	index, err := h.repo.GetAllProfessors(c.Context())
	if errors.Is(err, store.ErrNotFound) {
		index = []models.TruncatedProfessor{}
	} else if err != nil {
		return sendDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "professors", index)
}

func (h *ProfessorHandler) get(c *fiber.Ctx) error {
	professor, err := h.repo.GetProfessor(c.Context(), c.Params("id"))
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "professor", professor)
}
