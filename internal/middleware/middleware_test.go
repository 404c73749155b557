package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"avril/internal/entity"
	jwtPkg "avril/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, cfg Config) *fiber.App {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)
	m := New(log, cfg)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware(), m.NewLoggingMiddleware)
	app.Get("/open", m.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})
	app.Get("/secured", m.NewTokenMiddleware, func(c *fiber.Ctx) error {
		operator, err := jwtPkg.GetOperator(c)
		if err != nil {
			return err
		}
		return c.SendString(operator.Username)
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	app := newApp(t, Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)

	id := resp.Header.Get(RequestIDKey)
	assert.Len(t, id, 26)
	assert.Equal(t, id, body(t, resp))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDKey, "from-client")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-client", resp.Header.Get(RequestIDKey))
}

func TestRateLimiter_RejectsBurst(t *testing.T) {
	app := newApp(t, Config{RequestsPerSecond: 0.001, Burst: 2})

	codes := make([]int, 0, 3)
	var retry string
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		retry = resp.Header.Get(fiber.HeaderRetryAfter)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "1000", retry)
}

func TestRateLimiter_DropsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	r := newRateLimiter(1, 1)
	r.now = func() time.Time { return now }

	first := r.GetLimiterFrom("10.0.0.1")
	require.False(t, first.Allow() && first.Allow())
	assert.Same(t, first, r.GetLimiterFrom("10.0.0.1"))

	now = now.Add(visitorIdle)
	r.GetLimiterFrom("10.0.0.2")
	assert.Len(t, r.visitors, 1)
	assert.NotSame(t, first, r.GetLimiterFrom("10.0.0.1"))
}

func TestTokenMiddleware(t *testing.T) {
	t.Setenv(jwtPkg.AccessTokenSecret, "test-secret")
	app := newApp(t, Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/secured", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, _, err := jwtPkg.Sign(entity.Operator{ID: "op-1", Username: "kitchen"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secured", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "kitchen", body(t, resp))
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.JSONEq(t, `{"phrase":"hi","token":"[SECRET]"}`, sanitizeRequestBody([]byte(`{"phrase":"hi","token":"abc"}`)))
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("plain")))
}
