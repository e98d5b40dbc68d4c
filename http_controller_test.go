package flightdeck_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flightdeck "github.com/velocityworks/flightdeck"
)

type controllerFixture struct {
	app  *fiber.App
	repo flightdeck.RepositoryManager
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	auther, repo := setupAuther(t)

	app := fiber.New()
	flightdeck.RegisterAuthRoutes(app, flightdeck.WithAuther(auther))

	return &controllerFixture{app: app, repo: repo}
}

func (f *controllerFixture) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}

	res, err := f.app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}

	return res, decoded
}

// registerAndActivate provisions a ready-to-login account and returns its token.
func (f *controllerFixture) registerAndActivate(t *testing.T, username, email string) string {
	t.Helper()

	res, body := f.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
		"username": username,
		"email":    email,
		"password": "Str0ng!pass",
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode, "body: %v", body)

	user := body["user"].(map[string]any)
	id := int64(user["id"].(float64))
	require.NoError(t, f.repo.Users().SetActive(context.Background(), id, true))

	return user["token"].(string)
}

func TestRegistrationCreate(t *testing.T) {
	t.Run("creates an inactive account and returns a token", func(t *testing.T) {
		f := newControllerFixture(t)

		res, body := f.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "Str0ng!pass",
		})

		require.Equal(t, fiber.StatusCreated, res.StatusCode, "body: %v", body)

		user := body["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.Equal(t, false, user["is_active"])
		assert.NotEmpty(t, user["token"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("rejects bad credentials with a field map", func(t *testing.T) {
		f := newControllerFixture(t)

		res, body := f.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
			"username": "1234",
			"email":    "user@123.com",
			"password": "weak",
		})

		require.Equal(t, fiber.StatusBadRequest, res.StatusCode)

		fields := body["errors"].(map[string]any)
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
	})

	t.Run("rejects unparseable bodies", func(t *testing.T) {
		f := newControllerFixture(t)

		req := httptest.NewRequest(fiber.MethodPost, "/api/users", bytes.NewReader([]byte("{")))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		res, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestLoginPost(t *testing.T) {
	t.Run("issues a token for valid credentials", func(t *testing.T) {
		f := newControllerFixture(t)
		f.registerAndActivate(t, "alice", "alice@example.com")

		res, body := f.request(t, fiber.MethodPost, "/api/users/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "Str0ng!pass",
		})

		require.Equal(t, fiber.StatusOK, res.StatusCode, "body: %v", body)
		user := body["user"].(map[string]any)
		assert.NotEmpty(t, user["token"])
	})

	t.Run("rejects wrong credentials with 401", func(t *testing.T) {
		f := newControllerFixture(t)
		f.registerAndActivate(t, "alice", "alice@example.com")

		res, _ := f.request(t, fiber.MethodPost, "/api/users/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "Wr0ng!pass",
		})

		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("rejects a missing password with 400", func(t *testing.T) {
		f := newControllerFixture(t)

		res, _ := f.request(t, fiber.MethodPost, "/api/users/login", "", fiber.Map{
			"email": "alice@example.com",
		})

		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestProtectedUserRoutes(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		f := newControllerFixture(t)

		res, _ := f.request(t, fiber.MethodGet, "/api/user", "", nil)

		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("returns the current user", func(t *testing.T) {
		f := newControllerFixture(t)
		token := f.registerAndActivate(t, "alice", "alice@example.com")

		res, body := f.request(t, fiber.MethodGet, "/api/user", token, nil)

		require.Equal(t, fiber.StatusOK, res.StatusCode, "body: %v", body)
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.NotContains(t, user, "token")
	})

	t.Run("rejects a header with extra segments", func(t *testing.T) {
		f := newControllerFixture(t)
		token := f.registerAndActivate(t, "alice", "alice@example.com")

		req := httptest.NewRequest(fiber.MethodGet, "/api/user", nil)
		req.Header.Set(fiber.HeaderAuthorization, fmt.Sprintf("Token %s extra", token))

		res, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("updates the current user", func(t *testing.T) {
		f := newControllerFixture(t)
		token := f.registerAndActivate(t, "alice", "alice@example.com")

		res, body := f.request(t, fiber.MethodPut, "/api/user", token, fiber.Map{
			"username": "alice-renamed",
			"password": "N3w!passwd",
		})

		require.Equal(t, fiber.StatusOK, res.StatusCode, "body: %v", body)
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice-renamed", user["username"])

		// The new password works on the next login.
		res, _ = f.request(t, fiber.MethodPost, "/api/users/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "N3w!passwd",
		})
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("rejects invalid update payloads", func(t *testing.T) {
		f := newControllerFixture(t)
		token := f.registerAndActivate(t, "alice", "alice@example.com")

		res, _ := f.request(t, fiber.MethodPut, "/api/user", token, fiber.Map{
			"password": "short",
		})

		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestLogOut(t *testing.T) {
	f := newControllerFixture(t)
	token := f.registerAndActivate(t, "alice", "alice@example.com")

	res, body := f.request(t, fiber.MethodDelete, "/api/users/logout", token, nil)
	require.Equal(t, fiber.StatusOK, res.StatusCode, "body: %v", body)
	assert.Equal(t, "successfully logged out", body["success"])

	// The token no longer opens protected routes.
	res, _ = f.request(t, fiber.MethodGet, "/api/user", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	// Logging out again with the same token is a client error.
	res, _ = f.request(t, fiber.MethodDelete, "/api/users/logout", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
