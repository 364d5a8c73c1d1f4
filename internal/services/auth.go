package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/lib/resettoken"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

// cleanGrace is how long expired token rows are kept before Clean removes
// them. The grace window lets a rotated-then-reused refresh token be told
// apart from one that never existed.
const cleanGrace = 24 * time.Hour

type AuthConfig struct {
	Secret           string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration
	PasswordResetURL string
}

// Auth owns the token lifecycle: issuance, verification, rotation with
// replay containment, revocation and cleanup, plus the password-reset flow.
type Auth struct {
	log           *slog.Logger
	repo          *repo.Repo
	emailClient   EmailClient
	resetCooldown *gocache.Cache
	cfg           AuthConfig
}

func NewAuth(log *slog.Logger, repository *repo.Repo, emailClient EmailClient, cfg AuthConfig) *Auth {
	return &Auth{
		log:           log,
		repo:          repository,
		emailClient:   emailClient,
		resetCooldown: gocache.New(cfg.ResetTokenTTL, time.Minute),
		cfg:           cfg,
	}
}

// generateToken returns a URL-safe opaque token with 256 bits of entropy.
func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func newTokenPair(userID uint, accessTTL, refreshTTL time.Duration) (*entity.Token, error) {
	accessToken, err := generateToken()
	if err != nil {
		return nil, err
	}
	refreshToken, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &entity.Token{
		AccessToken:       accessToken,
		AccessExpiration:  now.Add(accessTTL),
		RefreshToken:      refreshToken,
		RefreshExpiration: now.Add(refreshTTL),
		UserID:            userID,
	}, nil
}

// Login checks a username/password pair against the credential store.
func (a *Auth) Login(ctx context.Context, username, password string) (entity.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op), slog.String("username", username))

	user, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			log.Info("user not found")
			return entity.User{}, ErrInvalidCredentials
		}
		log.Error("failed to find user", "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return entity.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Issue creates and persists a fresh access/refresh pair for the user.
func (a *Auth) Issue(ctx context.Context, user entity.User) (*entity.Token, error) {
	const op = "auth.Issue"

	token, err := newTokenPair(user.ID, a.cfg.AccessTokenTTL, a.cfg.RefreshTokenTTL)
	if err != nil {
		a.log.Error("failed to generate token pair", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.repo.SaveToken(ctx, token); err != nil {
		a.log.Error("failed to save token", "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// VerifyAccess authenticates a bearer access token. On success the owning
// user's last_seen advances. An expired token fails authentication but the
// row is left in place for Clean.
func (a *Auth) VerifyAccess(ctx context.Context, accessToken string) (entity.User, error) {
	const op = "auth.VerifyAccess"

	token, err := a.repo.GetTokenByAccess(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			return entity.User{}, ErrInvalidToken
		}
		a.log.Error("failed to look up access token", "op", op, "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if time.Now().UTC().After(token.AccessExpiration) {
		return entity.User{}, ErrInvalidToken
	}

	user, err := a.repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return entity.User{}, ErrInvalidToken
		}
		a.log.Error("failed to load token owner", "op", op, "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user.LastSeen = time.Now().UTC()
	if err := a.repo.TouchUserLastSeen(ctx, user.ID, user.LastSeen); err != nil {
		a.log.Error("failed to update last_seen", "op", op, "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Refresh rotates a token pair. The presented refresh token must be paired
// with the exact access token it was issued alongside. A match whose refresh
// expiration has passed is treated as a replay of an already-rotated token:
// every token of that user is deleted and the call fails. The whole
// read-check-mutate sequence runs in one transaction under a row lock, so at
// most one concurrent refresh of the same token can succeed.
func (a *Auth) Refresh(ctx context.Context, accessToken, refreshToken string) (*entity.Token, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	var newToken *entity.Token
	var replayed bool

	err := a.repo.Transaction(ctx, func(tx *repo.Repo) error {
		token, err := tx.GetTokenByPairForUpdate(ctx, refreshToken, accessToken)
		if err != nil {
			if errors.Is(err, repo.ErrTokenNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if time.Now().UTC().After(token.RefreshExpiration) {
			// Reuse of a rotated refresh token. Revoke everything the user
			// holds and commit the containment.
			log.Warn("expired refresh token reused, revoking all user tokens",
				slog.Uint64("user_id", uint64(token.UserID)))
			replayed = true
			return tx.DeleteTokensByUser(ctx, token.UserID)
		}

		token.Expire(time.Now().UTC())
		if err := tx.UpdateToken(ctx, token); err != nil {
			return err
		}

		newToken, err = newTokenPair(token.UserID, a.cfg.AccessTokenTTL, a.cfg.RefreshTokenTTL)
		if err != nil {
			return err
		}
		return tx.SaveToken(ctx, newToken)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidToken
		}
		log.Error("failed to refresh token", "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if replayed {
		return nil, ErrInvalidToken
	}

	return newToken, nil
}

// Revoke expires the token matching the access token. The row is kept until
// Clean removes it.
func (a *Auth) Revoke(ctx context.Context, accessToken string) error {
	const op = "auth.Revoke"

	token, err := a.repo.GetTokenByAccess(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repo.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		a.log.Error("failed to look up access token", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	token.Expire(time.Now().UTC())
	if err := a.repo.UpdateToken(ctx, token); err != nil {
		a.log.Error("failed to expire token", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RevokeAll deletes every token the user owns.
func (a *Auth) RevokeAll(ctx context.Context, user entity.User) error {
	return a.repo.DeleteTokensByUser(ctx, user.ID)
}

// Clean removes token rows that have been expired past the grace window.
// Safe to run repeatedly and concurrently.
func (a *Auth) Clean(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-cleanGrace)
	return a.repo.DeleteTokensExpiredBefore(ctx, cutoff)
}

// RequestPasswordReset emails a reset link when the address belongs to a
// known user. It reports success either way so account existence cannot be
// probed. Repeat requests for the same address inside the token TTL are
// dropped.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "auth.RequestPasswordReset"

	log := a.log.With(slog.String("op", op))

	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to look up user", "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, onCooldown := a.resetCooldown.Get(user.Email); onCooldown {
		log.Info("password reset already requested recently")
		return nil
	}

	token, err := resettoken.New(user.Email, a.cfg.ResetTokenTTL, a.cfg.Secret)
	if err != nil {
		log.Error("failed to sign reset token", "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	resetURL := a.cfg.PasswordResetURL + "?token=" + token

	// The client always gets a 204, so delivery problems only get logged.
	if err := a.emailClient.SendPasswordReset(user.Email, resetURL, token); err != nil {
		log.Warn("failed to send password reset email", "error", err)
		return nil
	}

	a.resetCooldown.SetDefault(user.Email, struct{}{})
	return nil
}

// ResetPassword verifies a reset token and rehashes the user's password.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "auth.ResetPassword"

	email, err := resettoken.Verify(token, a.cfg.Secret)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ErrInvalidToken
		}
		a.log.Error("failed to look up user", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = passHash
	if err := a.repo.UpdateUser(ctx, &user); err != nil {
		a.log.Error("failed to store new password", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("password reset completed", "op", op, slog.Uint64("user_id", uint64(user.ID)))
	return nil
}
