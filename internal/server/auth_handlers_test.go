package server

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	resp := h.request(http.MethodPost, "/api/user/register", "", fiber.Map{
		"username":   "olga",
		"first_name": "Olga",
		"last_name":  "Petrova",
		"email":      "olga@example.com",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	decode(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "olga", created.Username)
	assert.Empty(t, created.Password, "password hash must never be serialized")

	resp = h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"username": "olga",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("auth-token"))

	var login struct {
		Token string `json:"auth-token"`
	}
	decode(t, resp, &login)
	assert.NotEmpty(t, login.Token)
}

func TestLogin_ByEmail(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	h.signup("olga")

	resp := h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"email":    "olga@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("auth-token"))

	resp = h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"email":    "olga@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"email":    "ghost@example.com",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_ValidationAndDuplicates(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	h.signup("olga")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing username", fiber.Map{
			"first_name": "A", "last_name": "B",
			"email": "a@example.com", "password": "s3cret-pass",
		}},
		{"bad email", fiber.Map{
			"username": "nick", "first_name": "A", "last_name": "B",
			"email": "nope", "password": "s3cret-pass",
		}},
		{"short password", fiber.Map{
			"username": "nick", "first_name": "A", "last_name": "B",
			"email": "nick@example.com", "password": "short",
		}},
		{"duplicate username", fiber.Map{
			"username": "olga", "first_name": "A", "last_name": "B",
			"email": "other@example.com", "password": "s3cret-pass",
		}},
		{"duplicate email", fiber.Map{
			"username": "nick", "first_name": "A", "last_name": "B",
			"email": "olga@example.com", "password": "s3cret-pass",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.request(http.MethodPost, "/api/user/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	h.signup("olga")

	resp := h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"username": "olga",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.request(http.MethodPost, "/api/user/login", "", fiber.Map{
		"username": "nobody",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)

	resp := h.request(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.request(http.MethodGet, "/api/posts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetAndDeleteUser(t *testing.T) {
	t.Parallel()
	h := newTestHarness(t)
	olgaToken, olgaID := h.signup("olga")
	nickToken, _ := h.signup("nick")

	resp := h.request(http.MethodGet, "/api/user/olga", nickToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user struct {
		Username string `json:"username"`
	}
	decode(t, resp, &user)
	assert.Equal(t, "olga", user.Username)

	resp = h.request(http.MethodGet, "/api/user/ghost", nickToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting somebody else's account is forbidden
	resp = h.request(http.MethodDelete, "/api/user/"+itoa(olgaID), nickToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = h.request(http.MethodDelete, "/api/user/"+itoa(olgaID), olgaToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
