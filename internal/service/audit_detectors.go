package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/moderation"
)

// Detector names, used for routing and metrics labels.
const (
	DetectorDuplicates = "duplicates"
	DetectorRescan     = "moderation-rescan"
)

// Ratings from one submitter against one professor inside this span are
// treated as duplicate submissions.
const duplicateWindow = 48 * time.Hour

// DuplicateDetector flags clusters of ratings submitted by the same
// anonymous identifier within the duplicate window. The reported set is
// run-local only: a rating reported earlier in the same run is skipped, but
// a fresh run will report it again.
type DuplicateDetector struct {
	window   time.Duration
	reported map[string]struct{}
}

// NewDuplicateDetector builds a detector for one logical run.
func NewDuplicateDetector() *DuplicateDetector {
	return &DuplicateDetector{
		window:   duplicateWindow,
		reported: make(map[string]struct{}),
	}
}

// Name implements Detector.
func (d *DuplicateDetector) Name() string { return DetectorDuplicates }

// ProcessPage implements Detector.
func (d *DuplicateDetector) ProcessPage(_ context.Context, professors []models.Professor) (PageFindings, error) {
	var findings PageFindings

	for _, professor := range professors {
		groups := make(map[string][]models.Rating)
		for _, bucket := range professor.Reviews {
			for _, rating := range bucket {
				if rating.AnonymousIdentifier == "" {
					continue
				}
				groups[rating.AnonymousIdentifier] = append(groups[rating.AnonymousIdentifier], rating)
			}
		}

		identifiers := make([]string, 0, len(groups))
		for identifier := range groups {
			identifiers = append(identifiers, identifier)
		}
		sort.Strings(identifiers)

		for _, identifier := range identifiers {
			group := groups[identifier]
			if len(group) < 2 {
				continue
			}

			sort.Slice(group, func(i, j int) bool {
				return group[i].PostDate.Before(group[j].PostDate)
			})
			if group[len(group)-1].PostDate.Sub(group[0].PostDate) > d.window {
				continue
			}

			for _, rating := range group {
				if _, seen := d.reported[rating.ID]; seen {
					continue
				}
				d.reported[rating.ID] = struct{}{}
				findings.DuplicatesFound++
				findings.Reports = append(findings.Reports, models.RatingReport{
					RatingID:    rating.ID,
					ProfessorID: professor.ID,
					Reports: []models.Report{{
						Reason: fmt.Sprintf("duplicate submission: %d ratings from one submitter within %s",
							len(group), d.window),
						AnonymousIdentifier: identifier,
						SubmittedAt:         time.Now().UTC(),
					}},
				})
			}
		}
	}

	return findings, nil
}

// RescanDetector re-runs moderation over ratings that never had scores
// recorded (legacy records predating the moderation pipeline) and reports
// those whose dominant signal is harassment at the stricter re-audit bar.
type RescanDetector struct {
	provider moderation.Provider
	engine   *moderation.Engine
}

// NewRescanDetector builds the re-scan detector.
func NewRescanDetector(provider moderation.Provider, engine *moderation.Engine) *RescanDetector {
	return &RescanDetector{provider: provider, engine: engine}
}

// Name implements Detector.
func (d *RescanDetector) Name() string { return DetectorRescan }

// ProcessPage implements Detector.
func (d *RescanDetector) ProcessPage(ctx context.Context, professors []models.Professor) (PageFindings, error) {
	var findings PageFindings
	threshold := d.engine.Config().ReauditHarassment

	for _, professor := range professors {
		courses := make([]string, 0, len(professor.Reviews))
		for course := range professor.Reviews {
			courses = append(courses, course)
		}
		sort.Strings(courses)

		for _, course := range courses {
			for _, rating := range professor.Reviews[course] {
				if len(rating.ModerationScores) > 0 {
					continue
				}

				scores, _, err := d.provider.Moderate(ctx, rating.Text)
				if err != nil {
					return PageFindings{}, fmt.Errorf("re-score rating %s: %w", rating.ID, err)
				}
				findings.RatingsRescored++

				violation := d.engine.Evaluate(scores)
				if violation == nil || violation.Category != moderation.CategoryHarassment {
					continue
				}
				if scores[moderation.CategoryHarassment] < threshold {
					continue
				}

				findings.RatingsFlagged++
				findings.Reports = append(findings.Reports, models.RatingReport{
					RatingID:    rating.ID,
					ProfessorID: professor.ID,
					Reports: []models.Report{{
						Reason:              "moderation re-scan: " + violation.Reason,
						AnonymousIdentifier: rating.AnonymousIdentifier,
						SubmittedAt:         time.Now().UTC(),
					}},
				})
			}
		}
	}

	return findings, nil
}
