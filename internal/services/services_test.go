package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"github.com/WadsonGarbes/formaplus-api/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *repo.Repo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return repo.NewRepository(db)
}

type fakeEmailClient struct {
	to     []string
	urls   []string
	tokens []string
}

func (f *fakeEmailClient) SendPasswordReset(to, resetURL, token string) error {
	f.to = append(f.to, to)
	f.urls = append(f.urls, resetURL)
	f.tokens = append(f.tokens, token)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Secret:           "test-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		ResetTokenTTL:    15 * time.Minute,
		PasswordResetURL: "http://localhost:3000/reset",
	}
}

func newTestAuth(t *testing.T) (*Auth, *repo.Repo, *fakeEmailClient) {
	t.Helper()

	repository := newTestRepo(t)
	emailClient := &fakeEmailClient{}
	auth := NewAuth(slog.Default(), repository, emailClient, testAuthConfig())
	return auth, repository, emailClient
}

func createTestUser(t *testing.T, repository *repo.Repo, username string) entity.User {
	t.Helper()

	users := NewUsers(slog.Default(), repository)
	user, err := users.Register(context.Background(), username, username+"@example.com", "password", "")
	require.NoError(t, err)
	return user
}
