package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCanceled  = "canceled"
	AppointmentRejected  = "rejected"
)

type Appointment struct {
	gorm.Model
	ClientID        uint      `gorm:"column:client_id;not null" json:"client_id"`
	ProviderID      *uint     `gorm:"column:provider_id" json:"provider_id,omitempty"`
	Date            time.Time `gorm:"column:date;type:date;not null;index:idx_appointment_slot" json:"date"`
	Time            string    `gorm:"column:time;size:8;not null;index:idx_appointment_slot" json:"time"`
	Status          string    `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	Email           string    `gorm:"column:email;size:255;not null" json:"email"`
	Phone           string    `gorm:"column:phone;size:20" json:"phone"`
	Note            string    `gorm:"column:note;type:text" json:"note"`
	CalendarEventID string    `gorm:"column:calendar_event_id;size:255" json:"calendar_event_id,omitempty"`

	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Provider *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Booked reports whether the appointment still holds its slot. Canceled and
// rejected appointments free the slot for rebooking.
func (a *Appointment) Booked() bool {
	return a.Status != AppointmentCanceled && a.Status != AppointmentRejected
}
