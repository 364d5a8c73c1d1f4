package entity

import "time"

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:1024" json:"body"`
	Answer    string    `gorm:"size:512" json:"answer"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	UserID    uint      `gorm:"index" json:"user_id"`
}
