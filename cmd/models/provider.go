package models

import "gorm.io/gorm"

type Provider struct {
	gorm.Model
	FullName  string `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Title     string `gorm:"column:title;size:255" json:"title"`
	Bio       string `gorm:"column:bio;type:text" json:"bio"`
	Email     string `gorm:"column:email;size:255" json:"email"`
	Phone     string `gorm:"column:phone;size:20" json:"phone"`
	PhotoPath string `gorm:"column:photo_path;size:255" json:"photo_path"`
	Active    bool   `gorm:"column:active;default:true" json:"active"`

	Availability []RecurringAvailability `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE;" json:"availability,omitempty"`
}

func (Provider) TableName() string {
	return "providers"
}
