package models

import "gorm.io/gorm"

type NewsletterSignup struct {
	gorm.Model
	Email            string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Name             string `gorm:"column:name;size:255" json:"name"`
	UnsubscribeToken string `gorm:"column:unsubscribe_token;size:36;uniqueIndex" json:"-"`
	Active           bool   `gorm:"column:active;default:true" json:"active"`
}

func (NewsletterSignup) TableName() string {
	return "newsletter_signups"
}
