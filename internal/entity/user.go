package entity

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash []byte    `gorm:"not null" json:"-"`
	AboutMe      string    `gorm:"size:140" json:"about_me"`
	FirstSeen    time.Time `gorm:"not null" json:"first_seen"`
	LastSeen     time.Time `gorm:"not null" json:"last_seen"`
}
