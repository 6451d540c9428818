package models

import "gorm.io/gorm"

type Client struct {
	gorm.Model
	FullName string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Email    string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Phone    string `gorm:"column:phone;size:20" json:"phone"`
	Notes    string `gorm:"column:notes;type:text" json:"notes"`
}

func (Client) TableName() string {
	return "clients"
}
