package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/store"
)

func newTestRepo(t *testing.T) (*RatingRepository, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	typed, err := store.NewTyped(store.NewRedisKV(client))
	require.NoError(t, err)

	return NewRatingRepository(typed, zerolog.Nop()), server
}

func testProfessor(id, firstName string) *models.Professor {
	return &models.Professor{
		ID:         id,
		FirstName:  firstName,
		LastName:   "Turing",
		Department: "CSC",
		Courses:    []string{"CSC 101"},
		NumEvals:   1,
		Reviews: map[string][]models.Rating{
			"CSC 101": {{
				ID:            "rating-" + id,
				ProfessorID:   id,
				PostDate:      time.Now().UTC(),
				OverallRating: 3,
				Text:          "Solid course with clear structure.",
			}},
		},
		OverallRating:       3,
		MaterialClear:       3,
		StudentDifficulties: 3,
	}
}

func TestPutProfessorRefreshesIndex(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	professor := testProfessor("p1", "Alan")
	require.NoError(t, repo.PutProfessor(ctx, professor, false))

	index, err := repo.GetAllProfessors(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1)
	require.Equal(t, "p1", index[0].ID)
	require.Equal(t, 1, index[0].NumEvals)

	professor.NumEvals = 2
	require.NoError(t, repo.PutProfessor(ctx, professor, true))

	index, err = repo.GetAllProfessors(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1)
	require.Equal(t, 2, index[0].NumEvals)
}

func TestPutProfessorCollision(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p1", "Alan"), false))

	imposter := testProfessor("p1", "Evil")
	err := repo.PutProfessor(ctx, imposter, false)

	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	require.Equal(t, "p1", collision.ID)
	require.Equal(t, "Alan Turing", collision.Existing)

	// Same identity is a legitimate overwrite.
	update := testProfessor("p1", "Alan")
	update.NumEvals = 5
	require.NoError(t, repo.PutProfessor(ctx, update, false))
}

func TestGetProfessorNormalizesLegacyRecord(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	legacy := testProfessor("p1", "Alan")
	legacy.Tags = nil
	require.NoError(t, repo.PutProfessor(ctx, legacy, false))

	fetched, err := repo.GetProfessor(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, fetched.Tags)
	require.NotNil(t, fetched.Reviews)
}

func TestGetProfessorNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetProfessor(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrProfessorNotFound)
}

func TestRemoveProfessorDropsIndexEntry(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p1", "Alan"), false))
	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p2", "Ada"), false))

	require.NoError(t, repo.RemoveProfessor(ctx, "p1"))

	_, err := repo.GetProfessor(ctx, "p1")
	require.ErrorIs(t, err, ErrProfessorNotFound)

	index, err := repo.GetAllProfessors(ctx)
	require.NoError(t, err)
	require.Len(t, index, 1)
	require.Equal(t, "p2", index[0].ID)
}

func TestPutPendingMirrorsIntoRatingLog(t *testing.T) {
	repo, server := newTestRepo(t)
	ctx := context.Background()

	pending := &models.PendingRating{
		Rating: models.Rating{
			ID:            "pending-1",
			ProfessorID:   "p1",
			PostDate:      time.Now().UTC(),
			OverallRating: 3,
			Text:          "Waiting on the moderation queue.",
		},
		Course: "CSC 101",
		Status: models.PendingStatusQueued,
	}
	require.NoError(t, repo.PutPending(ctx, pending))

	fetched, err := repo.GetPending(ctx, "pending-1")
	require.NoError(t, err)
	require.Equal(t, models.PendingStatusQueued, fetched.Status)

	logIDs, err := repo.ListKeys(ctx, store.NamespaceRatingLog)
	require.NoError(t, err)
	require.Equal(t, []string{"pending-1"}, logIDs)

	// Both copies expire via retention, never via application deletes.
	require.Greater(t, server.TTL("professor-queue:pending-1"), time.Duration(0))
	require.Greater(t, server.TTL("rating-log:pending-1"), time.Duration(0))

	require.NoError(t, repo.RemovePending(ctx, "pending-1"))
	_, err = repo.GetPending(ctx, "pending-1")
	require.ErrorIs(t, err, ErrPendingNotFound)

	logIDs, err = repo.ListKeys(ctx, store.NamespaceRatingLog)
	require.NoError(t, err)
	require.Equal(t, []string{"pending-1"}, logIDs)
}

func TestAllPendingReturnsEveryQueueEntry(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		pending := &models.PendingRating{
			Rating: models.Rating{
				ID:            fmt.Sprintf("pending-%d", i),
				ProfessorID:   "p1",
				PostDate:      time.Now().UTC(),
				OverallRating: 2,
				Text:          "Waiting on the moderation queue.",
			},
			Course: "CSC 101",
			Status: models.PendingStatusQueued,
		}
		require.NoError(t, repo.PutPending(ctx, pending))
	}

	pending, err := repo.AllPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 5)
}

func TestAccumulateReportAppends(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first := models.RatingReport{
		RatingID:    "r1",
		ProfessorID: "p1",
		Reports: []models.Report{{
			Reason:      "offensive language",
			SubmittedAt: time.Now().UTC(),
		}},
	}
	require.NoError(t, repo.AccumulateReport(ctx, first))

	second := models.RatingReport{
		RatingID:    "r1",
		ProfessorID: "p1",
		Reports: []models.Report{{
			Reason:      "still offensive",
			SubmittedAt: time.Now().UTC(),
		}},
	}
	require.NoError(t, repo.AccumulateReport(ctx, second))

	report, err := repo.GetReport(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, report.Reports, 2)
	require.Equal(t, "offensive language", report.Reports[0].Reason)
	require.Equal(t, "still offensive", report.Reports[1].Reason)

	require.NoError(t, repo.RemoveReport(ctx, "r1"))
	_, err = repo.GetReport(ctx, "r1")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestGetValuesRejectsOversizedBatch(t *testing.T) {
	repo, _ := newTestRepo(t)

	ids := make([]string, MaxBulkKeys+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i)
	}

	_, err := repo.GetValues(context.Background(), store.NamespaceProfessors, ids)
	require.ErrorIs(t, err, ErrTooManyKeys)
}

func TestGetValuesAbortsOnMissingKey(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p1", "Alan"), false))

	_, err := repo.GetValues(ctx, store.NamespaceProfessors, []string{"p1", "ghost"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetProfessorsPreservesOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p1", "Alan"), false))
	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p2", "Ada"), false))
	require.NoError(t, repo.PutProfessor(ctx, testProfessor("p3", "Grace"), false))

	professors, err := repo.GetProfessors(ctx, []string{"p3", "p1", "p2"})
	require.NoError(t, err)
	require.Len(t, professors, 3)
	require.Equal(t, "p3", professors[0].ID)
	require.Equal(t, "p1", professors[1].ID)
	require.Equal(t, "p2", professors[2].ID)
}
