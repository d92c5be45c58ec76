package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Polyratings/polyratings-api/internal/aggregation"
	"github.com/Polyratings/polyratings-api/internal/dto"
	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/moderation"
	"github.com/Polyratings/polyratings-api/internal/observability"
	"github.com/Polyratings/polyratings-api/internal/repository"
)

// ModerationRejectedError signals that a submission was rejected by the
// moderation engine. The detailed violation stays on the pending record;
// submitters only ever see the fixed support message.
type ModerationRejectedError struct {
	Violation moderation.Violation
}

func (e *ModerationRejectedError) Error() string {
	return "submission rejected by moderation: " + e.Violation.Reason
}

// ModerationRejectionMessage is the only text shown to a rejected submitter.
const ModerationRejectionMessage = "Your rating could not be accepted. If you believe this is a mistake, please contact support."

// SubmissionService runs one rating submission through moderation and, on
// acceptance, folds it into the target professor's aggregate.
type SubmissionService interface {
	Submit(ctx context.Context, req dto.RatingSubmissionRequest) (*models.Professor, error)
}

type submissionService struct {
	repo      *repository.RatingRepository
	provider  moderation.Provider
	engine    *moderation.Engine
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewSubmissionService constructs the submission pipeline.
func NewSubmissionService(repo *repository.RatingRepository, provider moderation.Provider, engine *moderation.Engine, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		provider:  provider,
		engine:    engine,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/Polyratings/polyratings-api/internal/service/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, req dto.RatingSubmissionRequest) (*models.Professor, error) {
	ctx, span := s.tracer.Start(ctx, "rating.submit")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.SubmissionLatency().Observe(time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	pending := s.buildPending(req)
	span.SetAttributes(attribute.String("rating.id", pending.ID), attribute.String("professor.id", req.ProfessorID))

	if err := s.repo.PutPending(ctx, pending); err != nil {
		span.RecordError(err)
		observability.RatingSubmissions().WithLabelValues("error").Inc()
		return nil, fmt.Errorf("persist queued rating: %w", err)
	}

	pending.Status = models.PendingStatusProcessing
	scores, raw, err := s.provider.Moderate(ctx, pending.Text)
	if err != nil {
		pending.Status = models.PendingStatusFailed
		pending.Error = err.Error()
		if putErr := s.repo.PutPending(ctx, pending); putErr != nil {
			s.logger.Error().Err(putErr).Str("rating_id", pending.ID).Msg("failed to record moderation provider failure")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "moderation provider failed")
		observability.RatingSubmissions().WithLabelValues("error").Inc()
		return nil, fmt.Errorf("moderation provider: %w", err)
	}

	pending.ProviderResponse = raw
	pending.ModerationScores = scores

	if violation := s.engine.Evaluate(scores); violation != nil {
		observability.ModerationSeverity().Observe(violation.Score)
		pending.Status = models.PendingStatusFailed
		pending.Error = violation.Reason
		if err := s.repo.PutPending(ctx, pending); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("persist rejected rating: %w", err)
		}

		span.SetStatus(codes.Error, "submission rejected")
		observability.RatingSubmissions().WithLabelValues("rejected").Inc()
		s.logger.Info().
			Str("rating_id", pending.ID).
			Str("category", violation.Category).
			Msg("rating rejected by moderation")

		return nil, &ModerationRejectedError{Violation: *violation}
	}

	professor, err := s.repo.GetProfessor(ctx, req.ProfessorID)
	if err != nil {
		span.RecordError(err)
		observability.RatingSubmissions().WithLabelValues("error").Inc()
		return nil, err
	}

	aggregation.AddRating(professor, pending.Rating, pending.Course)

	// Same identity, same id: collision checking would only re-read the
	// record we just fetched.
	if err := s.repo.PutProfessor(ctx, professor, true); err != nil {
		span.RecordError(err)
		observability.RatingSubmissions().WithLabelValues("error").Inc()
		return nil, fmt.Errorf("persist professor aggregate: %w", err)
	}

	pending.Status = models.PendingStatusSuccessful
	if err := s.repo.PutPending(ctx, pending); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist accepted rating: %w", err)
	}

	observability.RatingSubmissions().WithLabelValues("accepted").Inc()
	span.SetStatus(codes.Ok, "accepted")
	s.logger.Info().
		Str("rating_id", pending.ID).
		Str("professor_id", professor.ID).
		Int("num_evals", professor.NumEvals).
		Msg("rating accepted and folded")

	return professor, nil
}

func (s *submissionService) buildPending(req dto.RatingSubmissionRequest) *models.PendingRating {
	return &models.PendingRating{
		Rating: models.Rating{
			ID:                            uuid.NewString(),
			ProfessorID:                   req.ProfessorID,
			Grade:                         req.Grade,
			GradeLevel:                    req.GradeLevel,
			CourseType:                    req.CourseType,
			PostDate:                      time.Now().UTC(),
			OverallRating:                 req.OverallRating,
			PresentsMaterialClearly:       req.PresentsMaterialClearly,
			RecognizesStudentDifficulties: req.RecognizesStudentDifficulties,
			Text:                          s.sanitizer.Sanitize(req.Rating),
			Tags:                          req.Tags,
			AnonymousIdentifier:           req.AnonymousIdentifier,
		},
		Course: req.Course,
		Status: models.PendingStatusQueued,
	}
}
