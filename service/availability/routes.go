package availability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"gorm.io/gorm"
)

type AvailabilityHandler struct {
	db *gorm.DB
}

func NewAvailabilityHandler(db *gorm.DB) *AvailabilityHandler {
	return &AvailabilityHandler{db: db}
}

func (h *AvailabilityHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/availability/slots", h.GetBookableSlots).Methods("GET")
	router.HandleFunc("/availability/{providerId}", h.GetProviderAvailability).Methods("GET")
	router.HandleFunc("/availability/{providerId}", utils.AuthMiddleware(h.SetProviderAvailability)).Methods("POST")
}

// GetBookableSlots returns the open slots per calendar date in the queried
// range. Availability is pooled across all providers unless a providerId
// query parameter scopes it.
func (h *AvailabilityHandler) GetBookableSlots(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("startDate")
	endStr := r.URL.Query().Get("endDate")
	if startStr == "" || endStr == "" {
		http.Error(w, "startDate and endDate are required", http.StatusBadRequest)
		return
	}

	start, err := time.ParseInLocation(dateLayout, startStr, time.UTC)
	if err != nil {
		http.Error(w, "Invalid startDate. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.UTC)
	if err != nil {
		http.Error(w, "Invalid endDate. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "endDate must not be before startDate", http.StatusBadRequest)
		return
	}

	rulesQuery := h.db.Model(&models.RecurringAvailability{})
	appointmentsQuery := h.db.Model(&models.Appointment{}).Where("date >= ? AND date <= ?", start, end)

	if providerStr := r.URL.Query().Get("providerId"); providerStr != "" {
		providerID, err := strconv.ParseUint(providerStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid provider ID", http.StatusBadRequest)
			return
		}
		rulesQuery = rulesQuery.Where("provider_id = ?", providerID)
		appointmentsQuery = appointmentsQuery.Where("provider_id = ?", providerID)
	}

	var rules []models.RecurringAvailability
	if err := rulesQuery.Find(&rules).Error; err != nil {
		http.Error(w, "Error retrieving availability", http.StatusInternalServerError)
		return
	}

	var appointments []models.Appointment
	if err := appointmentsQuery.Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	slots := ResolveSlots(rules, appointments, start, end)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slots)
}

// GetProviderAvailability returns the raw recurring availability rows for one
// provider.
func (h *AvailabilityHandler) GetProviderAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	var rules []models.RecurringAvailability
	if err := h.db.Where("provider_id = ?", providerID).Find(&rules).Error; err != nil {
		http.Error(w, "Error retrieving availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

// SetProviderAvailability accepts a weekly map {day: ["HH:MM", ...]} and
// upserts one row per day present in the payload. Each upsert replaces that
// day's slot list wholesale; days omitted from the payload are left
// untouched, and an explicit empty list clears a day. The per-day writes are
// independent: a failure partway leaves earlier days committed.
func (h *AvailabilityHandler) SetProviderAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["providerId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	var payload map[string][]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for day, slots := range payload {
		if !models.IsValidDay(day) {
			http.Error(w, "Invalid day of week: "+day, http.StatusBadRequest)
			return
		}
		for _, slot := range slots {
			if _, err := time.Parse("15:04", NormalizeTime(slot)); err != nil {
				http.Error(w, "Invalid time slot: "+slot, http.StatusBadRequest)
				return
			}
		}
	}

	var saved []models.RecurringAvailability

	// Iterate the canonical day order so responses are stable.
	for _, day := range models.DayNames {
		slots, ok := payload[day]
		if !ok {
			continue
		}

		normalized := make([]string, 0, len(slots))
		for _, slot := range slots {
			normalized = append(normalized, NormalizeTime(slot))
		}

		var rule models.RecurringAvailability
		err := h.db.Where("provider_id = ? AND day_of_week = ?", providerID, day).First(&rule).Error
		switch {
		case err == nil:
			rule.TimeSlots = normalized
			if err := h.db.Save(&rule).Error; err != nil {
				http.Error(w, "Error updating availability", http.StatusInternalServerError)
				return
			}
		case err == gorm.ErrRecordNotFound:
			rule = models.RecurringAvailability{
				ProviderID: uint(providerID),
				DayOfWeek:  day,
				TimeSlots:  normalized,
			}
			if err := h.db.Create(&rule).Error; err != nil {
				http.Error(w, "Error creating availability", http.StatusInternalServerError)
				return
			}
		default:
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		saved = append(saved, rule)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(saved)
}
