package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"piazza/internal/clock"
	"piazza/internal/config"
	"piazza/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testHarness bundles a fully wired fiber app over an in-memory database
// with a manual clock. The clock starts at the real current time so issued
// tokens validate, and tests advance it to drive expiration.
type testHarness struct {
	t   *testing.T
	app *fiber.App
	clk *clock.Manual
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret-key-0123456789abcdef",
		Port:              "0",
		Env:               "test",
		TokenTTLMinutes:   120,
		DefaultExpiryMins: 60,
		RateLimitPerMin:   1000,
		CacheTTLSeconds:   30,
	}
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	clk := clock.NewManual(time.Now().UTC())
	srv, err := NewServerWithDeps(testConfig(), db, nil, clk)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	srv.SetupRoutes(app)

	return &testHarness{t: t, app: app, clk: clk}
}

// request performs one HTTP round trip. A non-empty token travels in the
// auth-token header; a non-nil body is sent as JSON.
func (h *testHarness) request(method, path, token string, body any) *http.Response {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("auth-token", token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	return resp
}

// decode unmarshals the response body into out.
func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
}

// signup registers a user and returns their auth token and ID.
func (h *testHarness) signup(username string) (string, uint) {
	h.t.Helper()

	resp := h.request(http.MethodPost, "/api/user/register", "", fiber.Map{
		"username":   username,
		"first_name": username,
		"last_name":  "Test",
		"email":      fmt.Sprintf("%s@example.com", username),
		"password":   "s3cret-pass",
	})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID uint `json:"id"`
	}
	decode(h.t, resp, &created)

	resp = h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"username": username,
		"password": "s3cret-pass",
	})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"auth-token"`
	}
	decode(h.t, resp, &login)
	require.NotEmpty(h.t, login.Token)

	return login.Token, created.ID
}

// createPost posts into the given topics and returns the new post's ID.
func (h *testHarness) createPost(token, title string, topics []string, expiryMinutes int) uint {
	h.t.Helper()

	resp := h.request(http.MethodPost, "/api/posts", token, fiber.Map{
		"title":          title,
		"body":           "body of " + title,
		"topics":         topics,
		"expiry_minutes": expiryMinutes,
	})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode)

	var post struct {
		ID uint `json:"id"`
	}
	decode(h.t, resp, &post)
	return post.ID
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// postJSON mirrors the shape handlers return for a post.
type postJSON struct {
	ID            uint     `json:"id"`
	UserID        uint     `json:"user_id"`
	Title         string   `json:"title"`
	Topics        []string `json:"topics"`
	Status        []string `json:"status"`
	LikeCount     int      `json:"like_count"`
	DislikeCount  int      `json:"dislike_count"`
	ExpiryMinutes int      `json:"expiry_minutes"`
}
