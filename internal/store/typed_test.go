package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Polyratings/polyratings-api/internal/models"
)

func newTestStore(t *testing.T) (*Typed, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	typed, err := NewTyped(NewRedisKV(client))
	require.NoError(t, err)
	return typed, server
}

func validProfessor() models.Professor {
	return models.Professor{
		ID:         "b3f9d2c4-0000-4000-8000-000000000001",
		FirstName:  "Grace",
		LastName:   "Hopper",
		Department: "CSC",
		Courses:    []string{"CSC 101"},
		NumEvals:   1,
		Reviews: map[string][]models.Rating{
			"CSC 101": {{
				ID:            "r1",
				ProfessorID:   "b3f9d2c4-0000-4000-8000-000000000001",
				PostDate:      time.Now().UTC(),
				OverallRating: 4,
				Text:          "Wonderful lectures, fair exams.",
			}},
		},
		OverallRating:       4,
		MaterialClear:       4,
		StudentDifficulties: 4,
	}
}

func TestTypedPutGetRoundtrip(t *testing.T) {
	typed, _ := newTestStore(t)
	ctx := context.Background()

	professor := validProfessor()
	key := Key(NamespaceProfessors, professor.ID)
	require.NoError(t, typed.Put(ctx, key, SchemaProfessor, professor, 0))

	var fetched models.Professor
	require.NoError(t, typed.Get(ctx, key, SchemaProfessor, &fetched))
	require.Equal(t, professor.ID, fetched.ID)
	require.Equal(t, professor.NumEvals, fetched.NumEvals)
	require.Len(t, fetched.Reviews["CSC 101"], 1)
}

func TestTypedGetMissingKey(t *testing.T) {
	typed, _ := newTestStore(t)

	var out models.Professor
	err := typed.Get(context.Background(), Key(NamespaceProfessors, "absent"), SchemaProfessor, &out)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTypedPutRejectsInvalidRecord(t *testing.T) {
	typed, server := newTestStore(t)
	ctx := context.Background()

	professor := validProfessor()
	professor.OverallRating = 9

	key := Key(NamespaceProfessors, professor.ID)
	err := typed.Put(ctx, key, SchemaProfessor, professor, 0)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, key, validationErr.Key)
	require.False(t, server.Exists(key))
}

func TestTypedGetRejectsDriftedRecord(t *testing.T) {
	typed, server := newTestStore(t)
	key := Key(NamespaceProfessors, "drifted")
	require.NoError(t, server.Set(key, `{"id":"drifted","numEvals":"not a number"}`))

	var out models.Professor
	err := typed.Get(context.Background(), key, SchemaProfessor, &out)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestTypedPutHonorsTTL(t *testing.T) {
	typed, server := newTestStore(t)
	ctx := context.Background()

	pending := models.PendingRating{
		Rating: models.Rating{
			ID:            "p1",
			ProfessorID:   "b3f9d2c4-0000-4000-8000-000000000001",
			PostDate:      time.Now().UTC(),
			OverallRating: 3,
			Text:          "Queued for moderation review now.",
		},
		Course: "CSC 101",
		Status: models.PendingStatusQueued,
	}
	key := Key(NamespaceQueue, pending.ID)
	require.NoError(t, typed.Put(ctx, key, SchemaPendingRating, pending, time.Hour))

	server.FastForward(2 * time.Hour)

	var out models.PendingRating
	require.ErrorIs(t, typed.Get(ctx, key, SchemaPendingRating, &out), ErrNotFound)
}

func TestTypedListWalksNamespace(t *testing.T) {
	typed, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		user := models.User{ID: id, Username: "user-" + id}
		require.NoError(t, typed.Put(ctx, Key(NamespaceUsers, id), SchemaUser, user, 0))
	}
	professor := validProfessor()
	require.NoError(t, typed.Put(ctx, Key(NamespaceProfessors, professor.ID), SchemaProfessor, professor, 0))

	var keys []string
	cursor := uint64(0)
	for {
		page, next, err := typed.List(ctx, NamespaceUsers, cursor)
		require.NoError(t, err)
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}

	require.Len(t, keys, 3)
	require.ElementsMatch(t, []string{"users:u1", "users:u2", "users:u3"}, keys)
}
