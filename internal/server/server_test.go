package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bulletin/internal/config"
	"bulletin/internal/database"
	"bulletin/internal/middleware"
	"bulletin/internal/models"
)

func setupServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&[]models.Category{
		{Name: "Hardware", Active: true},
		{Name: "Software", Active: true},
	}).Error)

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      "test-secret-for-handler-tests-only",
		AllowedOrigins: "*",
		Env:            "test",
	}
	middleware.InitMiddleware(cfg)

	return New(cfg, db, nil), db
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	fields := map[string]json.RawMessage{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &fields)
	}
	return resp, fields
}

func signup(t *testing.T, s *Server, username string) string {
	t.Helper()
	resp, fields := doJSON(t, s, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var token string
	require.NoError(t, json.Unmarshal(fields["token"], &token))
	return token
}

func promoteToAdmin(t *testing.T, db *gorm.DB, username string) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", username).Update("is_admin", true).Error)
}

func categoryID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var category models.Category
	require.NoError(t, db.Where("name = ?", name).First(&category).Error)
	return category.ID
}

func TestAuthFlow(t *testing.T) {
	s, _ := setupServer(t)

	token := signup(t, s, "pat")
	require.NotEmpty(t, token)

	t.Run("duplicate email rejected", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPost, "/api/auth/signup", "", map[string]any{
			"username": "pat2",
			"email":    "pat@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login succeeds with correct password", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "pat@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, fields, "token")
	})

	t.Run("login fails with wrong password", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "pat@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("protected route requires a token", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodGet, "/api/bulletin/context", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestContextAndVocabularies(t *testing.T) {
	s, db := setupServer(t)
	token := signup(t, s, "pat")
	promoteToAdmin(t, db, "pat")

	t.Run("context reflects role and rosters", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodGet, "/api/bulletin/context", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var isAdmin bool
		require.NoError(t, json.Unmarshal(fields["is_admin"], &isAdmin))
		assert.True(t, isAdmin)

		var admins []models.UserOption
		require.NoError(t, json.Unmarshal(fields["admin_users"], &admins))
		require.Len(t, admins, 1)
		assert.Equal(t, "pat", admins[0].Name)
	})

	t.Run("owner roster is admin only", func(t *testing.T) {
		memberToken := signup(t, s, "casey")

		resp, _ := doJSON(t, s, http.MethodGet, "/api/bulletin/owners", memberToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, fields := doJSON(t, s, http.MethodGet, "/api/bulletin/owners", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var owners []models.UserOption
		require.NoError(t, json.Unmarshal(fields["owners"], &owners))
		require.Len(t, owners, 1)
		assert.Equal(t, "pat", owners[0].Name)
	})

	t.Run("categories come back sorted", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodGet, "/api/bulletin/categories", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var categories []models.CategoryOption
		require.NoError(t, json.Unmarshal(fields["categories"], &categories))
		require.Len(t, categories, 2)
		assert.Equal(t, "Hardware", categories[0].Name)
	})

	t.Run("statuses are type specific", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodGet, "/api/bulletin/statuses?type=support", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var statuses []string
		require.NoError(t, json.Unmarshal(fields["statuses"], &statuses))
		assert.Equal(t, []string{"New", "In Review", "In Progress", "Done", "Closed"}, statuses)

		resp, _ = doJSON(t, s, http.MethodGet, "/api/bulletin/statuses?type=nonsense", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRequestLifecycle(t *testing.T) {
	s, db := setupServer(t)
	adminToken := signup(t, s, "triager")
	promoteToAdmin(t, db, "triager")
	userToken := signup(t, s, "submitter")
	hardware := categoryID(t, db, "Hardware")

	var requestID uint

	t.Run("submitter creates a support request", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodPost, "/api/bulletin/requests", userToken, map[string]any{
			"type":         "support",
			"body_html":    "<p>The third-floor printer is jammed again.</p>",
			"category_ids": []uint{hardware},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		require.NoError(t, json.Unmarshal(fields["id"], &requestID))

		var status, title, number string
		require.NoError(t, json.Unmarshal(fields["status"], &status))
		require.NoError(t, json.Unmarshal(fields["title"], &title))
		require.NoError(t, json.Unmarshal(fields["record_number"], &number))
		assert.Equal(t, "New", status, "initial status is the first vocabulary entry")
		assert.Equal(t, "The third-floor printer i...", title, "blank title derived from body")
		assert.Equal(t, models.FormatRecordNumber(requestID), number)
	})

	t.Run("validation failures are rejected", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPost, "/api/bulletin/requests", userToken, map[string]any{
			"type":      "support",
			"body_html": "<p><br></p>",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list filters by category", func(t *testing.T) {
		resp, fields := doJSON(t, s, http.MethodGet, "/api/bulletin/support?category_name=Hardware", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var requests []models.Request
		require.NoError(t, json.Unmarshal(fields["requests"], &requests))
		require.Len(t, requests, 1)
		assert.Equal(t, requestID, requests[0].ID)

		resp, fields = doJSON(t, s, http.MethodGet, "/api/bulletin/support?category_name=Software", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(fields["requests"], &requests))
		assert.Empty(t, requests)
	})

	t.Run("status update is admin only", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/bulletin/requests/%d/status", requestID), userToken, map[string]any{
			"status": "In Progress",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, fields := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/bulletin/requests/%d/status", requestID), adminToken, map[string]any{
			"status": "In Progress",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var status string
		require.NoError(t, json.Unmarshal(fields["status"], &status))
		assert.Equal(t, "In Progress", status)
	})

	t.Run("status outside the vocabulary is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/bulletin/requests/%d/status", requestID), adminToken, map[string]any{
			"status": "Accepted",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("owner assignment requires an admin owner", func(t *testing.T) {
		var admin models.User
		require.NoError(t, db.Where("username = ?", "triager").First(&admin).Error)
		var submitter models.User
		require.NoError(t, db.Where("username = ?", "submitter").First(&submitter).Error)

		resp, _ := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/bulletin/requests/%d/owner", requestID), adminToken, map[string]any{
			"owner_id": submitter.ID,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, fields := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/bulletin/requests/%d/owner", requestID), adminToken, map[string]any{
			"owner_id": admin.ID,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var ownerID uint
		require.NoError(t, json.Unmarshal(fields["owner_id"], &ownerID))
		assert.Equal(t, admin.ID, ownerID)
	})

	t.Run("comment thread", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/bulletin/requests/%d/comments", requestID), userToken, map[string]any{
			"body": "Any update on this?",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/bulletin/requests/%d/comments", requestID), userToken, map[string]any{
			"body": "   ",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, fields := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/bulletin/requests/%d/comments", requestID), adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var comments []models.Comment
		require.NoError(t, json.Unmarshal(fields["comments"], &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, "Any update on this?", comments[0].Body)
	})

	t.Run("missing record is a 404", func(t *testing.T) {
		resp, _ := doJSON(t, s, http.MethodGet, "/api/bulletin/requests/99999", userToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := setupServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		resp, _ := doJSON(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
