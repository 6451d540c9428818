package newsletter

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/serenitycare/Serenity-server/service/mailer"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type NewsletterHandler struct {
	db   *gorm.DB
	mail *mailer.Mailer
}

func NewNewsletterHandler(db *gorm.DB, mail *mailer.Mailer) *NewsletterHandler {
	return &NewsletterHandler{db: db, mail: mail}
}

func (h *NewsletterHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/newsletter/subscribe", h.Subscribe).Methods("POST")
	router.HandleFunc("/newsletter/unsubscribe/{token}", h.Unsubscribe).Methods("GET")
	router.HandleFunc("/newsletter/subscribers", utils.AuthMiddleware(h.GetSubscribers)).Methods("GET")
	router.HandleFunc("/newsletter/broadcast", utils.AuthMiddleware(h.Broadcast)).Methods("POST")
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	var existing models.NewsletterSignup
	err := h.db.Where("email = ?", request.Email).First(&existing).Error
	if err == nil {
		// Re-subscribing an inactive address reactivates it; an active one is
		// a no-op rather than an error.
		if !existing.Active {
			existing.Active = true
			if err := h.db.Save(&existing).Error; err != nil {
				http.Error(w, "Error subscribing", http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Subscribed"})
		return
	}
	if err != gorm.ErrRecordNotFound {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	signup := models.NewsletterSignup{
		Email:            request.Email,
		Name:             request.Name,
		UnsubscribeToken: uuid.New().String(),
		Active:           true,
	}
	if err := h.db.Create(&signup).Error; err != nil {
		http.Error(w, "Error subscribing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Subscribed"})
}

func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	token := vars["token"]

	result := h.db.Model(&models.NewsletterSignup{}).
		Where("unsubscribe_token = ?", token).Update("active", false)
	if result.Error != nil {
		http.Error(w, "Error unsubscribing", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Invalid unsubscribe link", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Unsubscribed"})
}

func (h *NewsletterHandler) GetSubscribers(w http.ResponseWriter, r *http.Request) {
	var signups []models.NewsletterSignup
	if err := h.db.Where("active = ?", true).Order("created_at DESC").Find(&signups).Error; err != nil {
		http.Error(w, "Error retrieving subscribers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"subscribers": signups,
		"total":       len(signups),
	})
}

// Broadcast sends a newsletter to every active subscriber. Delivery is best
// effort per recipient; individual failures are logged and skipped.
func (h *NewsletterHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.Subject == "" || request.Body == "" {
		http.Error(w, "Subject and body are required", http.StatusBadRequest)
		return
	}

	var signups []models.NewsletterSignup
	if err := h.db.Where("active = ?", true).Find(&signups).Error; err != nil {
		http.Error(w, "Error retrieving subscribers", http.StatusInternalServerError)
		return
	}

	go func(recipients []models.NewsletterSignup) {
		for _, s := range recipients {
			if err := h.mail.Send(s.Email, request.Subject, request.Body); err != nil {
				log.Printf("Error sending newsletter to %s: %v", s.Email, err)
			}
		}
	}(signups)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Broadcast queued",
		"recipients": len(signups),
	})
}
