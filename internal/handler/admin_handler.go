package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/dto"
	"github.com/Polyratings/polyratings-api/internal/moderation"
	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/service"
	"github.com/Polyratings/polyratings-api/internal/utils"
)

// AdminHandler serves the audit and report-resolution surface.
type AdminHandler struct {
	processor *service.AuditProcessor
	reports   service.ReportService
	repo      *repository.RatingRepository
	provider  moderation.Provider
	engine    *moderation.Engine
	logger    zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(processor *service.AuditProcessor, reports service.ReportService, repo *repository.RatingRepository, provider moderation.Provider, engine *moderation.Engine, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		processor: processor,
		reports:   reports,
		repo:      repo,
		provider:  provider,
		engine:    engine,
		logger:    logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes. Callers must guard the group with the admin
// JWT middleware.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/audit/duplicates/run", h.runDuplicates)
	router.Post("/audit/rescan/run", h.runRescan)
	router.Post("/audit/pause", h.pause)
	router.Get("/audit/status", h.status)
	router.Get("/ratings/pending", h.pending)
	router.Post("/reports/:ratingId/resolve", h.resolve)
}

func (h *AdminHandler) runDuplicates(c *fiber.Ctx) error {
	return h.run(c, func() service.Detector { return service.NewDuplicateDetector() })
}

func (h *AdminHandler) runRescan(c *fiber.Ctx) error {
	return h.run(c, func() service.Detector { return service.NewRescanDetector(h.provider, h.engine) })
}

// run drives a scan to completion (or pause/failure) within the request,
// collecting every page result. A request with no cursor against a paused
// scan resumes it, keeping the run's detector state and totals.
func (h *AdminHandler) run(c *fiber.Ctx, newDetector func() service.Detector) error {
	var payload dto.AuditRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	var pages []dto.AuditPageResult
	collect := func(result dto.AuditPageResult) {
		pages = append(pages, result)
	}

	var err error
	if payload.Cursor == "" && h.processor.Status().State == string(service.AuditStatePaused) {
		err = h.processor.Resume(c.Context(), collect)
	} else {
		err = h.processor.Start(c.Context(), newDetector(), payload.Cursor, collect)
	}
	if err != nil {
		// Pages already processed are reported alongside the failure; their
		// reports are not rolled back.
		h.logger.Error().Err(err).Int("pages", len(pages)).Msg("audit run aborted")
		return utils.SendError(c, fiber.StatusInternalServerError, "audit run aborted: resume with the last reported cursor")
	}

	return utils.SendSuccess(c, "audit run finished", fiber.Map{
		"status": h.processor.Status(),
		"pages":  pages,
	})
}

func (h *AdminHandler) pause(c *fiber.Ctx) error {
	if !h.processor.Pause() {
		return utils.SendError(c, fiber.StatusConflict, "no audit scan is running")
	}
	return utils.SendSuccess(c, "pause requested", nil)
}

func (h *AdminHandler) status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "audit status", h.processor.Status())
}

func (h *AdminHandler) pending(c *fiber.Ctx) error {
	pending, err := h.repo.AllPending(c.Context())
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pending ratings", pending)
}

func (h *AdminHandler) resolve(c *fiber.Ctx) error {
	var payload dto.ResolveReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.reports.Resolve(c.Context(), c.Params("ratingId"), payload.Action); err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "report resolved", nil)
}
