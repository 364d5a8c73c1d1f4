package entity

import "time"

// Token is one issued access/refresh pair. The refresh token can only renew
// the access token it was created with, so both columns live on the same row.
type Token struct {
	ID                uint      `gorm:"primaryKey"`
	AccessToken       string    `gorm:"size:64;uniqueIndex;not null"`
	AccessExpiration  time.Time `gorm:"not null"`
	RefreshToken      string    `gorm:"size:64;uniqueIndex;not null"`
	RefreshExpiration time.Time `gorm:"not null"`
	UserID            uint      `gorm:"index;not null"`
}

// Expire pushes both expirations into the past. The row is kept around until
// Clean removes it, which preserves a trace of rotated tokens.
func (t *Token) Expire(now time.Time) {
	t.AccessExpiration = now
	t.RefreshExpiration = now
}
