// Package aggregation folds ratings into, and removes them from, a
// professor's running statistics. All functions are pure with respect to
// storage: they mutate the in-memory aggregate only, and callers persist
// the result. Averages are rounded to two decimals after every update, so
// the stored value is a path-dependent approximation of the exact mean.
package aggregation

import (
	"errors"
	"math"

	"github.com/Polyratings/polyratings-api/internal/models"
)

// ErrRatingNotFound reports a rating id absent from every review bucket.
var ErrRatingNotFound = errors.New("aggregation: rating not found")

// AddRating appends the rating to the professor's bucket for courseCode,
// creating the bucket (and course entry) if needed, bumps tag counts, and
// folds the rating's sub-scores into the three running averages.
func AddRating(professor *models.Professor, rating models.Rating, courseCode string) {
	if professor.Reviews == nil {
		professor.Reviews = make(map[string][]models.Rating)
	}
	if _, ok := professor.Reviews[courseCode]; !ok {
		professor.Courses = append(professor.Courses, courseCode)
	}
	professor.Reviews[courseCode] = append(professor.Reviews[courseCode], rating)

	// Older records predate tag tracking and may lack the map entirely.
	if professor.Tags == nil {
		professor.Tags = make(map[string]int)
	}
	for _, tag := range rating.Tags {
		professor.Tags[tag]++
	}

	n := float64(professor.NumEvals)
	professor.OverallRating = round2((professor.OverallRating*n + float64(rating.OverallRating)) / (n + 1))
	professor.MaterialClear = round2((professor.MaterialClear*n + float64(rating.PresentsMaterialClearly)) / (n + 1))
	professor.StudentDifficulties = round2((professor.StudentDifficulties*n + float64(rating.RecognizesStudentDifficulties)) / (n + 1))
	professor.NumEvals++
}

// RemoveRating deletes the rating with the given id from whichever bucket
// holds it and unfolds its contribution from the running averages. The
// bucket and course entry are dropped when the bucket empties. Tag counts
// are deliberately left untouched; only additions adjust them.
func RemoveRating(professor *models.Professor, ratingID string) error {
	courseCode, idx := locateRating(professor, ratingID)
	if idx < 0 {
		return ErrRatingNotFound
	}

	bucket := professor.Reviews[courseCode]
	removed := bucket[idx]
	bucket = append(bucket[:idx], bucket[idx+1:]...)

	if len(bucket) == 0 {
		delete(professor.Reviews, courseCode)
		professor.Courses = removeCourse(professor.Courses, courseCode)
	} else {
		professor.Reviews[courseCode] = bucket
	}

	if professor.NumEvals == 1 {
		// Last rating: floor everything to zero instead of dividing by zero.
		professor.OverallRating = 0
		professor.MaterialClear = 0
		professor.StudentDifficulties = 0
		professor.NumEvals = 0
		return nil
	}

	n := float64(professor.NumEvals)
	professor.OverallRating = round2((professor.OverallRating*n - float64(removed.OverallRating)) / (n - 1))
	professor.MaterialClear = round2((professor.MaterialClear*n - float64(removed.PresentsMaterialClearly)) / (n - 1))
	professor.StudentDifficulties = round2((professor.StudentDifficulties*n - float64(removed.RecognizesStudentDifficulties)) / (n - 1))
	professor.NumEvals--

	return nil
}

// locateRating searches the review buckets only; the course list is never
// trusted as an index into them.
func locateRating(professor *models.Professor, ratingID string) (string, int) {
	for courseCode, bucket := range professor.Reviews {
		for i, rating := range bucket {
			if rating.ID == ratingID {
				return courseCode, i
			}
		}
	}
	return "", -1
}

func removeCourse(courses []string, courseCode string) []string {
	result := courses[:0]
	for _, course := range courses {
		if course != courseCode {
			result = append(result, course)
		}
	}
	return result
}

// round2 rounds to two decimals, halves away from zero.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
