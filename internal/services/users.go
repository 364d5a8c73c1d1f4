package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/pagination"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// UserPatch enumerates the fields a user may change on their own profile.
// A nil field is left untouched. Password changes additionally require the
// current password.
type UserPatch struct {
	Username    *string
	Email       *string
	AboutMe     *string
	Password    *string
	OldPassword *string
}

type Users struct {
	log  *slog.Logger
	repo *repo.Repo
}

func NewUsers(log *slog.Logger, repository *repo.Repo) *Users {
	return &Users{log: log, repo: repository}
}

// Register creates a user with a freshly hashed password.
func (u *Users) Register(ctx context.Context, username, email, password, aboutMe string) (entity.User, error) {
	const op = "users.Register"

	log := u.log.With(slog.String("op", op), slog.String("username", username))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: passHash,
		AboutMe:      aboutMe,
		FirstSeen:    now,
		LastSeen:     now,
	}

	if err := u.repo.SaveUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			log.Info("user already exists")
			return entity.User{}, ErrUserExists
		}
		log.Error("failed to save user", "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

func (u *Users) GetByID(ctx context.Context, id uint) (entity.User, error) {
	user, err := u.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, err
	}
	return user, nil
}

func (u *Users) GetByUsername(ctx context.Context, username string) (entity.User, error) {
	user, err := u.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, err
	}
	return user, nil
}

// List pages over all users in username ASC order. The after cursor, when
// present, selects users strictly beyond that username.
func (u *Users) List(ctx context.Context, p pagination.Params) ([]entity.User, int64, error) {
	if p.After != "" {
		return u.repo.ListUsersAfter(ctx, p.After, p.Limit)
	}
	return u.repo.ListUsers(ctx, p.Limit, p.Offset)
}

// Update applies a profile patch to the authenticated user. Changing the
// password without presenting the correct current one fails with
// ErrInvalidCredentials.
func (u *Users) Update(ctx context.Context, user entity.User, patch UserPatch) (entity.User, error) {
	const op = "users.Update"

	log := u.log.With(slog.String("op", op), slog.Uint64("user_id", uint64(user.ID)))

	if patch.Password != nil {
		if patch.OldPassword == nil {
			return entity.User{}, ErrInvalidCredentials
		}
		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(*patch.OldPassword)); err != nil {
			log.Info("wrong old password on profile update")
			return entity.User{}, ErrInvalidCredentials
		}

		passHash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return entity.User{}, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = passHash
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.AboutMe != nil {
		user.AboutMe = *patch.AboutMe
	}

	if err := u.repo.UpdateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			return entity.User{}, ErrUserExists
		}
		log.Error("failed to update user", "error", err)
		return entity.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
