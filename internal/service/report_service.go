package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/aggregation"
	"github.com/Polyratings/polyratings-api/internal/dto"
	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/notify"
	"github.com/Polyratings/polyratings-api/internal/repository"
)

// ErrRatingNotFound reports a rating id absent from the professor's buckets.
var ErrRatingNotFound = errors.New("service: rating not found")

// ErrInvalidResolveAction rejects an unknown report resolution action.
var ErrInvalidResolveAction = errors.New("service: resolve action must be remove or dismiss")

// ReportService accumulates abuse reports against ratings and lets
// administrators settle them.
type ReportService interface {
	Report(ctx context.Context, req dto.ReportRequest) error
	Resolve(ctx context.Context, ratingID, action string) error
}

type reportService struct {
	repo      *repository.RatingRepository
	sink      notify.Sink
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewReportService constructs the report workflow.
func NewReportService(repo *repository.RatingRepository, sink notify.Sink, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		repo:      repo,
		sink:      sink,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) Report(ctx context.Context, req dto.ReportRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	professor, err := s.repo.GetProfessor(ctx, req.ProfessorID)
	if err != nil {
		return err
	}

	rating, ok := findRating(professor, req.RatingID)
	if !ok {
		return ErrRatingNotFound
	}

	report := models.RatingReport{
		RatingID:    req.RatingID,
		ProfessorID: req.ProfessorID,
		Reports: []models.Report{{
			Email:               req.Email,
			Reason:              s.sanitizer.Sanitize(req.Reason),
			AnonymousIdentifier: rating.AnonymousIdentifier,
			SubmittedAt:         time.Now().UTC(),
		}},
	}

	if err := s.repo.AccumulateReport(ctx, report); err != nil {
		return fmt.Errorf("accumulate report: %w", err)
	}

	s.sink.Send(
		"Rating reported",
		fmt.Sprintf("Rating %s on professor %s was reported: %s", req.RatingID, professor.Name(), report.Reports[0].Reason),
	)

	s.logger.Info().Str("rating_id", req.RatingID).Str("professor_id", req.ProfessorID).Msg("report accumulated")
	return nil
}

// Resolve settles an accumulated report. "remove" unfolds the offending
// rating from its professor before destroying the report record; "dismiss"
// destroys the record only.
func (s *reportService) Resolve(ctx context.Context, ratingID, action string) error {
	report, err := s.repo.GetReport(ctx, ratingID)
	if err != nil {
		return err
	}

	switch action {
	case "remove":
		professor, err := s.repo.GetProfessor(ctx, report.ProfessorID)
		if err != nil {
			return err
		}
		if err := aggregation.RemoveRating(professor, ratingID); err != nil {
			if errors.Is(err, aggregation.ErrRatingNotFound) {
				return ErrRatingNotFound
			}
			return err
		}
		if err := s.repo.PutProfessor(ctx, professor, true); err != nil {
			return fmt.Errorf("persist professor after removal: %w", err)
		}
	case "dismiss":
	default:
		return ErrInvalidResolveAction
	}

	if err := s.repo.RemoveReport(ctx, ratingID); err != nil {
		return fmt.Errorf("remove report record: %w", err)
	}

	s.logger.Info().Str("rating_id", ratingID).Str("action", action).Msg("report resolved")
	return nil
}

func findRating(professor *models.Professor, ratingID string) (models.Rating, bool) {
	for _, bucket := range professor.Reviews {
		for _, rating := range bucket {
			if rating.ID == ratingID {
				return rating, true
			}
		}
	}
	return models.Rating{}, false
}
