package repo

import (
	"context"
	"errors"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *Repo) SaveToken(ctx context.Context, token *entity.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *Repo) UpdateToken(ctx context.Context, token *entity.Token) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *Repo) GetTokenByAccess(ctx context.Context, accessToken string) (*entity.Token, error) {
	var token entity.Token
	err := r.db.WithContext(ctx).Where("access_token = ?", accessToken).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// GetTokenByPair looks up a token matching both the refresh and the access
// token exactly. A refresh token presented with an access token from a
// different pair must not match.
func (r *Repo) GetTokenByPair(ctx context.Context, refreshToken, accessToken string) (*entity.Token, error) {
	var token entity.Token
	err := r.db.WithContext(ctx).
		Where("refresh_token = ? AND access_token = ?", refreshToken, accessToken).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// GetTokenByPairForUpdate is GetTokenByPair with a row lock. Call inside
// Transaction so two concurrent refreshes of the same token serialize.
func (r *Repo) GetTokenByPairForUpdate(ctx context.Context, refreshToken, accessToken string) (*entity.Token, error) {
	var token entity.Token
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("refresh_token = ? AND access_token = ?", refreshToken, accessToken).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// DeleteTokensByUser removes every token row of the user.
func (r *Repo) DeleteTokensByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Token{}).Error
}

// DeleteTokensExpiredBefore removes token rows whose refresh expiration is
// older than the cutoff.
func (r *Repo) DeleteTokensExpiredBefore(ctx context.Context, cutoff time.Time) error {
	return r.db.WithContext(ctx).Where("refresh_expiration < ?", cutoff).Delete(&entity.Token{}).Error
}

// CountTokensByUser reports how many token rows the user currently has.
func (r *Repo) CountTokensByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Token{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}
