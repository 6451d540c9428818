package models

import "gorm.io/gorm"

type Testimonial struct {
	gorm.Model
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Email    string `gorm:"column:email;size:255" json:"email"`
	Content  string `gorm:"column:content;type:text;not null" json:"content"`
	Approved bool   `gorm:"column:approved;default:false" json:"approved"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
