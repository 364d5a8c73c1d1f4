package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/config"
	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/handlers"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"github.com/WadsonGarbes/formaplus-api/internal/routes"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/WadsonGarbes/formaplus-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	repo   *repo.Repo
	auth   *services.Auth
}

type nopEmailClient struct{}

func (nopEmailClient) SendPasswordReset(to, resetURL, token string) error { return nil }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		Env:                "local",
		Secret:             "test-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		ResetTokenTTL:      15 * time.Minute,
		RefreshTokenInBody: true,
	}

	repository := repo.NewRepository(db)
	logger := slog.Default()

	authService := services.NewAuth(logger, repository, nopEmailClient{}, services.AuthConfig{
		Secret:           cfg.Secret,
		AccessTokenTTL:   cfg.AccessTokenTTL,
		RefreshTokenTTL:  cfg.RefreshTokenTTL,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		PasswordResetURL: "http://localhost:3000/reset",
	})
	userService := services.NewUsers(logger, repository)
	questionService := services.NewQuestions(logger, repository)

	engine := gin.New()
	api := engine.Group("/")
	routes.RegisterRoutes(api,
		handlers.NewTokenHandler(authService, cfg),
		handlers.NewUserHandler(userService, questionService),
		handlers.NewQuestionHandler(questionService),
		authService)

	return &testServer{engine: engine, repo: repository, auth: authService}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func basic(username, password string) http.Header {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth(username, password)
	return http.Header{"Authorization": req.Header["Authorization"]}
}

// registerAndLogin creates a user over the API and issues a token pair.
func (s *testServer) registerAndLogin(t *testing.T, username string) (entity.User, string, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/users", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user entity.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	rec = s.do(t, http.MethodPost, "/tokens", nil, basic(username, "password"))
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	return user, tokens.AccessToken, tokens.RefreshToken
}

func TestTokenEndpoints_IssueRefreshRevoke(t *testing.T) {
	s := newTestServer(t)
	_, access, refresh := s.registerAndLogin(t, "alice")

	// bad credentials never issue tokens
	rec := s.do(t, http.MethodPost, "/tokens", nil, basic("alice", "wrong"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// rotation returns a new pair
	rec = s.do(t, http.MethodPut, "/tokens", gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.NotEqual(t, access, rotated.AccessToken)

	// replaying the rotated-out pair fails and takes every token of the
	// user down with it, including the pair the rotation just issued
	time.Sleep(5 * time.Millisecond)
	rec = s.do(t, http.MethodPut, "/tokens", gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/me", nil, bearer(rotated.AccessToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// a fresh login still works; revoking its access token stops it
	rec = s.do(t, http.MethodPost, "/tokens", nil, basic("alice", "password"))
	require.Equal(t, http.StatusOK, rec.Code)

	var fresh struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))

	rec = s.do(t, http.MethodDelete, "/tokens", nil, bearer(fresh.AccessToken))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/me", nil, bearer(fresh.AccessToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuestionEndpoints_PaginationEnvelope(t *testing.T) {
	s := newTestServer(t)
	user, access, _ := s.registerAndLogin(t, "alice")

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 25; i++ {
		q := entity.Question{
			Body:      fmt.Sprintf("question %d", i),
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
			UserID:    user.ID,
		}
		require.NoError(t, s.repo.SaveQuestion(context.Background(), &q))
	}

	var page struct {
		Data       []entity.Question `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Count  int `json:"count"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}

	rec := s.do(t, http.MethodGet, "/questions?limit=10&offset=10", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 10, page.Pagination.Count)
	require.Equal(t, 25, page.Pagination.Total)
	require.Len(t, page.Data, 10)
	require.Equal(t, "question 10", page.Data[0].Body)
	require.Equal(t, "question 19", page.Data[9].Body)

	rec = s.do(t, http.MethodGet, "/questions?limit=10&offset=20", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 5, page.Pagination.Count)
	require.Equal(t, 25, page.Pagination.Total)

	// cursor mode: strictly older than item 4
	after := base.Add(-4 * time.Hour).Format(time.RFC3339)
	rec = s.do(t, http.MethodGet, "/questions?limit=10&after="+after, nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 10, page.Pagination.Count)
	require.Equal(t, "question 5", page.Data[0].Body)

	// malformed cursor is a validation failure, not silently ignored
	rec = s.do(t, http.MethodGet, "/questions?after=yesterday", nil, bearer(access))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// oversized limit is clamped to the endpoint max
	rec = s.do(t, http.MethodGet, "/questions?limit=100", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 25, page.Pagination.Limit)
}

func TestQuestionEndpoints_Ownership(t *testing.T) {
	s := newTestServer(t)
	_, aliceAccess, _ := s.registerAndLogin(t, "alice")
	_, bobAccess, _ := s.registerAndLogin(t, "bob")

	rec := s.do(t, http.MethodPost, "/questions", gin.H{
		"body":   "whose question is this?",
		"answer": "alice's",
	}, bearer(aliceAccess))
	require.Equal(t, http.StatusCreated, rec.Code)

	var question entity.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &question))

	path := fmt.Sprintf("/questions/%d", question.ID)

	rec = s.do(t, http.MethodPut, path, gin.H{"body": "bob's now"}, bearer(bobAccess))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, path, nil, bearer(bobAccess))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil, bearer(bobAccess))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &question))
	require.Equal(t, "whose question is this?", question.Body)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	user, access, _ := s.registerAndLogin(t, "alice")

	// lookup by id and by username
	rec := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/alice", nil, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/users/nobody", nil, bearer(access))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// profile update needs the old password for password changes
	rec = s.do(t, http.MethodPut, "/me", gin.H{"password": "brand-new"}, bearer(access))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/me", gin.H{
		"password":     "brand-new",
		"old_password": "password",
		"about_me":     "updated",
	}, bearer(access))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated entity.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "updated", updated.AboutMe)

	// validation failures carry the field error list
	rec = s.do(t, http.MethodPost, "/users", gin.H{"username": "x"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, http.StatusBadRequest, envelope.Code)
	require.NotEmpty(t, envelope.Errors)
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "alice")

	// unknown emails still get a 204
	rec := s.do(t, http.MethodPost, "/tokens/reset", gin.H{"email": "ghost@example.com"}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/tokens/reset", gin.H{"email": "alice@example.com"}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPut, "/tokens/reset", gin.H{
		"token":        "garbage",
		"new_password": "whatever1",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
