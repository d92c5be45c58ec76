package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Polyratings/polyratings-api/internal/handler"
	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/moderation"
	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/service"
)

const submitProfessorID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

type moderationStub struct {
	scores map[string]float64
}

func (m *moderationStub) Moderate(ctx context.Context, text string) (map[string]float64, json.RawMessage, error) {
	return m.scores, json.RawMessage(`{"stub":true}`), nil
}

func newRatingApp(t *testing.T, repo *repository.RatingRepository, scores map[string]float64) *fiber.App {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	engine := moderation.NewEngine(moderation.DefaultConfig())
	provider := &moderationStub{scores: scores}

	submissions := service.NewSubmissionService(repo, provider, engine, validate, zerolog.Nop())
	reports := service.NewReportService(repo, noopSink{}, validate, zerolog.Nop())

	app := fiber.New()
	handler.NewRatingHandler(submissions, reports, zerolog.Nop()).Register(app.Group("/professors"))
	return app
}

type noopSink struct{}

func (noopSink) Send(title, body string) {}

func submitBody(t *testing.T) *bytes.Reader {
	t.Helper()

	payload := map[string]interface{}{
		"course":                        "CSC 101",
		"grade":                         "A",
		"overallRating":                 4,
		"presentsMaterialClearly":       3,
		"recognizesStudentDifficulties": 2,
		"rating":                        "Great professor, explains recursion with real patience.",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestRatingHandlerSubmitAccepted(t *testing.T) {
	repo := newHandlerRepo(t)
	seedHandlerProfessorWithID(t, repo, submitProfessorID)

	app := newRatingApp(t, repo, map[string]float64{"harassment": 0.01})

	req := httptest.NewRequest(http.MethodPost, "/professors/"+submitProfessorID+"/ratings", submitBody(t))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decoded := decodeResponse(t, resp)
	require.True(t, decoded.Success)
	require.Equal(t, "rating accepted", decoded.Message)
}

func TestRatingHandlerSubmitRejected(t *testing.T) {
	repo := newHandlerRepo(t)
	seedHandlerProfessorWithID(t, repo, submitProfessorID)

	app := newRatingApp(t, repo, map[string]float64{moderation.CategorySexualMinors: 0.90})

	req := httptest.NewRequest(http.MethodPost, "/professors/"+submitProfessorID+"/ratings", submitBody(t))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)

	decoded := decodeResponse(t, resp)
	require.False(t, decoded.Success)
	require.Equal(t, service.ModerationRejectionMessage, decoded.Message)
}

func TestRatingHandlerSubmitValidation(t *testing.T) {
	repo := newHandlerRepo(t)
	seedHandlerProfessorWithID(t, repo, submitProfessorID)

	app := newRatingApp(t, repo, map[string]float64{})

	payload, err := json.Marshal(map[string]interface{}{"course": "CSC 101", "rating": "short"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/professors/"+submitProfessorID+"/ratings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	decoded := decodeResponse(t, resp)
	require.Equal(t, "request validation failed", decoded.Message)
	require.NotNil(t, decoded.Errors)
}

func TestRatingHandlerSubmitUnknownProfessor(t *testing.T) {
	repo := newHandlerRepo(t)

	app := newRatingApp(t, repo, map[string]float64{})

	req := httptest.NewRequest(http.MethodPost, "/professors/"+submitProfessorID+"/ratings", submitBody(t))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func seedHandlerProfessorWithID(t *testing.T, repo *repository.RatingRepository, id string) {
	t.Helper()

	professor := &models.Professor{
		ID:         id,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "CSC",
		Courses:    []string{},
		Reviews:    make(map[string][]models.Rating),
		Tags:       make(map[string]int),
	}
	require.NoError(t, repo.PutProfessor(context.Background(), professor, false))
}
