package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (*http.Response, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded APIResponse
	require.NoError(t, json.Unmarshal(body, &decoded))
	return resp, decoded
}

func TestSendSuccessDefaults(t *testing.T) {
	resp, decoded := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "", fiber.Map{"ok": true})
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decoded.Success)
	require.Equal(t, "success", decoded.Message)
	require.NotNil(t, decoded.Data)
}

func TestSendErrorPayload(t *testing.T) {
	resp, decoded := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusConflict, "already exists")
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, decoded.Success)
	require.Equal(t, "already exists", decoded.Message)
}

func TestSendValidationErrorListsViolations(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}

	err := validator.New(validator.WithRequiredStructEnabled()).Struct(payload{Email: "nope"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	resp, decoded := performRequest(t, func(c *fiber.Ctx) error {
		return SendValidationError(c, validationErrs)
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "request validation failed", decoded.Message)
	require.NotNil(t, decoded.Errors)
}
