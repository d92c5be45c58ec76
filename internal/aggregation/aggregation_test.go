package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Polyratings/polyratings-api/internal/models"
)

func newProfessor() *models.Professor {
	return &models.Professor{
		ID:         "prof-1",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "CSC",
		Courses:    []string{},
		Reviews:    make(map[string][]models.Rating),
		Tags:       make(map[string]int),
	}
}

func TestAddRatingFirstRating(t *testing.T) {
	professor := newProfessor()

	AddRating(professor, models.Rating{
		ID:                            "r1",
		OverallRating:                 4,
		PresentsMaterialClearly:       3,
		RecognizesStudentDifficulties: 2,
		Tags:                          []string{"Engaging", "Fair grader"},
	}, "CSC 101")

	require.Equal(t, 1, professor.NumEvals)
	require.Equal(t, 4.0, professor.OverallRating)
	require.Equal(t, 3.0, professor.MaterialClear)
	require.Equal(t, 2.0, professor.StudentDifficulties)
	require.Equal(t, []string{"CSC 101"}, professor.Courses)
	require.Len(t, professor.Reviews["CSC 101"], 1)
	require.Equal(t, 1, professor.Tags["Engaging"])
	require.Equal(t, 1, professor.Tags["Fair grader"])
}

func TestAddRatingIncrementalMean(t *testing.T) {
	professor := newProfessor()
	professor.NumEvals = 1
	professor.OverallRating = 4.0
	professor.MaterialClear = 4.0
	professor.StudentDifficulties = 4.0
	professor.Reviews["CSC 101"] = []models.Rating{{ID: "r1", OverallRating: 4}}
	professor.Courses = []string{"CSC 101"}

	AddRating(professor, models.Rating{ID: "r2", OverallRating: 2, PresentsMaterialClearly: 2, RecognizesStudentDifficulties: 2}, "CSC 101")

	require.Equal(t, 2, professor.NumEvals)
	require.Equal(t, 3.00, professor.OverallRating)
	require.Equal(t, 3.00, professor.MaterialClear)
	require.Equal(t, 3.00, professor.StudentDifficulties)
}

func TestAddRatingHandlesMissingMaps(t *testing.T) {
	professor := &models.Professor{ID: "prof-legacy"}

	AddRating(professor, models.Rating{ID: "r1", OverallRating: 3, Tags: []string{"Tough"}}, "MATH 141")

	require.Equal(t, 1, professor.NumEvals)
	require.Len(t, professor.Reviews["MATH 141"], 1)
	require.Equal(t, 1, professor.Tags["Tough"])
}

func TestRemoveRatingInverseOfAdd(t *testing.T) {
	professor := newProfessor()
	AddRating(professor, models.Rating{ID: "r1", OverallRating: 3, PresentsMaterialClearly: 3, RecognizesStudentDifficulties: 3}, "CSC 101")
	AddRating(professor, models.Rating{ID: "r2", OverallRating: 1, PresentsMaterialClearly: 2, RecognizesStudentDifficulties: 4}, "CSC 102")

	require.NoError(t, RemoveRating(professor, "r2"))

	require.Equal(t, 1, professor.NumEvals)
	require.InDelta(t, 3.0, professor.OverallRating, 0.01)
	require.InDelta(t, 3.0, professor.MaterialClear, 0.01)
	require.InDelta(t, 3.0, professor.StudentDifficulties, 0.01)
	require.Equal(t, []string{"CSC 101"}, professor.Courses)
	require.NotContains(t, professor.Reviews, "CSC 102")
}

func TestRemoveLastRatingFloorsToZero(t *testing.T) {
	professor := newProfessor()
	AddRating(professor, models.Rating{ID: "r1", OverallRating: 4, PresentsMaterialClearly: 4, RecognizesStudentDifficulties: 4}, "CSC 101")

	require.NoError(t, RemoveRating(professor, "r1"))

	require.Equal(t, 0, professor.NumEvals)
	require.Equal(t, 0.0, professor.OverallRating)
	require.Equal(t, 0.0, professor.MaterialClear)
	require.Equal(t, 0.0, professor.StudentDifficulties)
	require.Empty(t, professor.Courses)
	require.Empty(t, professor.Reviews)
}

func TestRemoveRatingKeepsTagCounts(t *testing.T) {
	professor := newProfessor()
	AddRating(professor, models.Rating{ID: "r1", OverallRating: 4, Tags: []string{"Engaging"}}, "CSC 101")
	AddRating(professor, models.Rating{ID: "r2", OverallRating: 2, Tags: []string{"Engaging"}}, "CSC 101")

	require.NoError(t, RemoveRating(professor, "r2"))

	require.Equal(t, 2, professor.Tags["Engaging"])
}

func TestRemoveRatingUnknownID(t *testing.T) {
	professor := newProfessor()
	AddRating(professor, models.Rating{ID: "r1", OverallRating: 4}, "CSC 101")

	require.ErrorIs(t, RemoveRating(professor, "missing"), ErrRatingNotFound)
	require.Equal(t, 1, professor.NumEvals)
}
