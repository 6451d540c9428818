package availability

import (
	"sort"
	"time"

	"github.com/serenitycare/Serenity-server/cmd/models"
)

const dateLayout = "2006-01-02"

// ResolveSlots projects recurring weekly availability onto the calendar dates
// in [start, end] inclusive and removes slots already held by a booked
// appointment. Dates with no remaining open slots are omitted entirely from
// the result. The function is pure: callers fetch the rows, it only derives.
func ResolveSlots(rules []models.RecurringAvailability, appointments []models.Appointment, start, end time.Time) map[string][]string {
	// Pool rules by weekday name. Rows from different providers for the same
	// day merge into one candidate set.
	byDay := make(map[string][]string)
	for _, r := range rules {
		byDay[r.DayOfWeek] = append(byDay[r.DayOfWeek], r.TimeSlots...)
	}

	// Index booked appointment times by normalized date key. Stored dates are
	// formatted in UTC to match the generated range keys, and stored times may
	// carry seconds while slots are minute granularity.
	booked := make(map[string]map[string]bool)
	for i := range appointments {
		a := &appointments[i]
		if !a.Booked() {
			continue
		}
		dateKey := a.Date.UTC().Format(dateLayout)
		if booked[dateKey] == nil {
			booked[dateKey] = make(map[string]bool)
		}
		booked[dateKey][NormalizeTime(a.Time)] = true
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	result := make(map[string][]string)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		slots := byDay[models.DayName(day)]
		if len(slots) == 0 {
			continue
		}

		dateKey := day.Format(dateLayout)
		seen := make(map[string]bool)
		var open []string
		for _, slot := range slots {
			slot = NormalizeTime(slot)
			if seen[slot] {
				continue
			}
			seen[slot] = true
			if booked[dateKey][slot] {
				continue
			}
			open = append(open, slot)
		}

		if len(open) == 0 {
			continue
		}
		sort.Strings(open)
		result[dateKey] = open
	}

	return result
}

// NormalizeTime reduces a time-of-day string to HH:MM, dropping seconds.
func NormalizeTime(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
