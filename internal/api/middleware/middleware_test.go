package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, r io.Reader) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", domain.ErrUserNotFound, 404, "USER_NOT_FOUND"},
		{"wrapped app error", domain.ErrCameraUnavailable.WithError(errors.New("device busy")), 503, "CAMERA_UNAVAILABLE"},
		{"custom message", domain.ErrCaptureFailed.WithMessage("Session timed out"), 422, "CAPTURE_FAILED"},
		{"fiber error", fiber.ErrUpgradeRequired, 426, "HTTP_ERROR"},
		{"unknown error", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Error.Code)
		})
	}
}

func TestErrorHandler_CustomMessage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ErrCaptureFailed.WithMessage("Session timed out - please try again")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "Session timed out - please try again", decodeError(t, resp.Body).Error.Message)
}

func TestRecover(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
	app.Use(Recover(testLogger()))
	app.Get("/", func(c *fiber.Ctx) error { panic("camera driver crashed") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Error.Code)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(testLogger())})
	app.Use(requestid.New())
	app.Use(Logger(logger))
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.ErrUserNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, "/missing", entry["path"])
	assert.NotEmpty(t, entry["request_id"])
}
