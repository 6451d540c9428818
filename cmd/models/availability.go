package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RecurringAvailability is a provider's standing weekly schedule: one row per
// (provider, day of week), holding the bookable start times for that day.
// Rows are replaced wholesale by the per-day upsert; no history is kept.
type RecurringAvailability struct {
	gorm.Model
	ProviderID uint           `gorm:"column:provider_id;not null;uniqueIndex:idx_provider_day" json:"provider_id"`
	DayOfWeek  string         `gorm:"column:day_of_week;size:10;not null;uniqueIndex:idx_provider_day" json:"day_of_week"`
	TimeSlots  pq.StringArray `gorm:"column:time_slots;type:text[]" json:"time_slots"`

	Provider *Provider `gorm:"foreignKey:ProviderID" json:"-"`
}

func (RecurringAvailability) TableName() string {
	return "recurring_availabilities"
}

// DayNames lists the canonical weekday names, Sunday first, matching
// time.Weekday ordering. All seven days are bookable.
var DayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func IsValidDay(day string) bool {
	for _, d := range DayNames {
		if d == day {
			return true
		}
	}
	return false
}

// DayName returns the lowercase weekday name for a date.
func DayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
