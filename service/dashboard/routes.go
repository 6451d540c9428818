package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type DashboardStats struct {
	TotalClients          int64 `json:"total_clients"`
	TotalProviders        int64 `json:"total_providers"`
	PendingAppointments   int64 `json:"pending_appointments"`
	ConfirmedAppointments int64 `json:"confirmed_appointments"`
	UpcomingThisWeek      int64 `json:"upcoming_this_week"`
	NewsletterSubscribers int64 `json:"newsletter_subscribers"`
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.HandleFunc("/stats", utils.AuthMiddleware(h.GetDashboardStats)).Methods("GET")
}

func (h *DashboardHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats

	h.db.Model(&models.Client{}).Count(&stats.TotalClients)
	h.db.Model(&models.Provider{}).Where("active = ?", true).Count(&stats.TotalProviders)
	h.db.Model(&models.Appointment{}).Where("status = ?", models.AppointmentPending).
		Count(&stats.PendingAppointments)
	h.db.Model(&models.Appointment{}).Where("status = ?", models.AppointmentConfirmed).
		Count(&stats.ConfirmedAppointments)

	now := time.Now().UTC()
	weekEnd := now.AddDate(0, 0, 7)
	h.db.Model(&models.Appointment{}).
		Where("status = ? AND date >= ? AND date <= ?", models.AppointmentConfirmed, now, weekEnd).
		Count(&stats.UpcomingThisWeek)

	h.db.Model(&models.NewsletterSignup{}).Where("active = ?", true).
		Count(&stats.NewsletterSubscribers)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
