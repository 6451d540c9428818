package models

import (
	"time"

	"gorm.io/gorm"
)

// CalendarToken stores the Google OAuth credentials for an owner account.
// One row per user; refreshed tokens overwrite the row.
type CalendarToken struct {
	gorm.Model
	UserID       uint      `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	AccessToken  string    `gorm:"column:access_token;type:text;not null" json:"-"`
	RefreshToken string    `gorm:"column:refresh_token;type:text" json:"-"`
	TokenType    string    `gorm:"column:token_type;size:50" json:"token_type"`
	Expiry       time.Time `gorm:"column:expiry" json:"expiry"`
}

func (CalendarToken) TableName() string {
	return "calendar_tokens"
}
