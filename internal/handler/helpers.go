package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/service"
	"github.com/Polyratings/polyratings-api/internal/store"
	"github.com/Polyratings/polyratings-api/internal/utils"
)

// sendDomainError maps domain errors onto the HTTP surface. Moderation
// rejections deliberately hide the violation breakdown behind a fixed
// support message; the detail stays on the pending record.
func sendDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErrs validator.ValidationErrors
		rejected       *service.ModerationRejectedError
		collision      *repository.CollisionError
		schemaErr      *store.ValidationError
	)

	switch {
	case errors.As(err, &validationErrs):
		return utils.SendValidationError(c, validationErrs)
	case errors.As(err, &rejected):
		return utils.SendError(c, fiber.StatusPreconditionFailed, service.ModerationRejectionMessage)
	case errors.Is(err, repository.ErrProfessorNotFound),
		errors.Is(err, repository.ErrPendingNotFound),
		errors.Is(err, repository.ErrReportNotFound),
		errors.Is(err, service.ErrRatingNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &collision):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrTooManyKeys),
		errors.Is(err, service.ErrInvalidResolveAction):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuditRunning),
		errors.Is(err, service.ErrAuditNotPaused):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &schemaErr):
		logger.Error().Err(err).Msg("stored record failed schema validation")
		return utils.SendError(c, fiber.StatusInternalServerError, "stored record failed schema validation")
	default:
		logger.Error().Err(err).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal error")
	}
}
