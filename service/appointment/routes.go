package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/serenitycare/Serenity-server/service/availability"
	"github.com/serenitycare/Serenity-server/service/calendar"
	"github.com/serenitycare/Serenity-server/service/mailer"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
	db       *gorm.DB
	mail     *mailer.Mailer
	calendar *calendar.Client
}

func NewAppointmentHandler(db *gorm.DB, mail *mailer.Mailer, cal *calendar.Client) *AppointmentHandler {
	return &AppointmentHandler{db: db, mail: mail, calendar: cal}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/appointments/book", h.BookAppointment).Methods("POST")
	router.HandleFunc("/appointments", utils.AuthMiddleware(h.GetAllAppointments)).Methods("GET")
	router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.GetAppointment)).Methods("GET")
	router.HandleFunc("/appointments/{id}/status", utils.AuthMiddleware(h.UpdateAppointmentStatus)).Methods("PATCH")
	router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.DeleteAppointment)).Methods("DELETE")
	router.HandleFunc("/appointments/client/{clientId}", utils.AuthMiddleware(h.GetClientAppointments)).Methods("GET")
}

type bookingRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ProviderID *uint  `json:"provider_id,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Note       string `json:"note"`
}

// BookAppointment creates a pending appointment from the public booking form.
// The slot check and insert run in one transaction so two concurrent requests
// for the same slot cannot both succeed; the loser gets a 409.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FullName == "" || req.Email == "" || req.Date == "" || req.Time == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		http.Error(w, "Invalid date. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slot := availability.NormalizeTime(req.Time)
	if _, err := time.Parse("15:04", slot); err != nil {
		http.Error(w, "Invalid time. Use HH:MM", http.StatusBadRequest)
		return
	}

	// The requested slot must come from configured availability for that
	// weekday, pooled or provider-scoped to match how it was offered.
	rulesQuery := h.db.Where("day_of_week = ?", models.DayName(date))
	if req.ProviderID != nil {
		rulesQuery = rulesQuery.Where("provider_id = ?", *req.ProviderID)
	}
	var rules []models.RecurringAvailability
	if err := rulesQuery.Find(&rules).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	offered := false
	for _, rule := range rules {
		for _, s := range rule.TimeSlots {
			if availability.NormalizeTime(s) == slot {
				offered = true
				break
			}
		}
	}
	if !offered {
		http.Error(w, "Slot not available", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	// Concurrent requests for the same slot serialize on a transaction-scoped
	// advisory lock; a plain read-then-insert would let two transactions pass
	// the conflict check below before either commits.
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", req.Date+" "+slot).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Repeat bookers are matched by email instead of creating duplicates.
	var client models.Client
	err = tx.Where("email = ?", req.Email).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		client = models.Client{FullName: req.FullName, Email: req.Email, Phone: req.Phone}
		if err := tx.Create(&client).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error saving client", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		tx.Rollback()
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Slot conflict check inside the transaction. Stored times may carry
	// seconds, so both forms are matched.
	var existing models.Appointment
	err = tx.Where("date = ? AND (time = ? OR time = ?) AND status NOT IN ?",
		date, slot, slot+":00", []string{models.AppointmentCanceled, models.AppointmentRejected}).
		First(&existing).Error
	if err == nil {
		tx.Rollback()
		http.Error(w, "Time slot already booked", http.StatusConflict)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	appointment := models.Appointment{
		ClientID:   client.ID,
		ProviderID: req.ProviderID,
		Date:       date,
		Time:       slot,
		Status:     models.AppointmentPending,
		Email:      req.Email,
		Phone:      req.Phone,
		Note:       req.Note,
	}

	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating appointment", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing booking", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := h.mail.SendBookingReceived(appointment.Email, req.Date, slot); err != nil {
			log.Printf("Error sending booking email: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 100

	query := h.db.Model(&models.Appointment{}).Preload("Client").Preload("Provider")

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := r.URL.Query().Get("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if provider := r.URL.Query().Get("providerId"); provider != "" {
		query = query.Where("provider_id = ?", provider)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	var appointments []models.Appointment
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"appointments": appointments,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
		"total_pages":  (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Preload("Client").Preload("Provider").First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetClientAppointments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["clientId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var appointments []models.Appointment
	if err := h.db.Where("client_id = ?", clientID).Preload("Provider").
		Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointments)
}

// UpdateAppointmentStatus transitions an appointment and drives the side
// effects: confirmation creates a Google Calendar event, cancellation and
// rejection remove it, and the client is emailed either way. Calendar and
// mail failures are logged and swallowed; the transition itself stands.
func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var statusUpdate struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusUpdate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch statusUpdate.Status {
	case models.AppointmentPending, models.AppointmentConfirmed,
		models.AppointmentCanceled, models.AppointmentRejected:
	default:
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	previous := appointment.Status
	appointment.Status = statusUpdate.Status

	if err := h.db.Save(&appointment).Error; err != nil {
		http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		return
	}

	if previous != appointment.Status {
		go h.syncCalendar(appointment)
		go func(a models.Appointment) {
			if err := h.mail.SendStatusUpdate(a.Email, a.Status, a.Date.UTC().Format("2006-01-02"), a.Time); err != nil {
				log.Printf("Error sending status email: %v", err)
			}
		}(appointment)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	if err := h.db.Delete(&appointment).Error; err != nil {
		http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
		return
	}

	if appointment.CalendarEventID != "" {
		go h.removeCalendarEvent(appointment.CalendarEventID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Appointment deleted successfully",
	})
}

// syncCalendar reconciles the external calendar with the appointment status.
func (h *AppointmentHandler) syncCalendar(a models.Appointment) {
	ctx := context.Background()

	switch a.Status {
	case models.AppointmentConfirmed:
		if a.CalendarEventID != "" {
			return
		}
		start, err := slotStart(a)
		if err != nil {
			log.Printf("Error parsing appointment slot for calendar sync: %v", err)
			return
		}
		summary := "Appointment: " + a.Email
		eventID, err := h.calendar.CreateAppointmentEvent(ctx, summary, a.Note, start)
		if err != nil {
			log.Printf("Error creating calendar event: %v", err)
			return
		}
		if err := h.db.Model(&models.Appointment{}).Where("id = ?", a.ID).
			Update("calendar_event_id", eventID).Error; err != nil {
			log.Printf("Error storing calendar event id: %v", err)
		}
	case models.AppointmentCanceled, models.AppointmentRejected:
		if a.CalendarEventID == "" {
			return
		}
		h.removeCalendarEvent(a.CalendarEventID)
		if err := h.db.Model(&models.Appointment{}).Where("id = ?", a.ID).
			Update("calendar_event_id", "").Error; err != nil {
			log.Printf("Error clearing calendar event id: %v", err)
		}
	}
}

func (h *AppointmentHandler) removeCalendarEvent(eventID string) {
	if err := h.calendar.DeleteEvent(context.Background(), eventID); err != nil {
		log.Printf("Error deleting calendar event %s: %v", eventID, err)
	}
}

func slotStart(a models.Appointment) (time.Time, error) {
	tod, err := time.Parse("15:04", availability.NormalizeTime(a.Time))
	if err != nil {
		return time.Time{}, err
	}
	d := a.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC), nil
}
