package testimonial

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type TestimonialHandler struct {
	db *gorm.DB
}

func NewTestimonialHandler(db *gorm.DB) *TestimonialHandler {
	return &TestimonialHandler{db: db}
}

func (h *TestimonialHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/testimonials", h.SubmitTestimonial).Methods("POST")
	router.HandleFunc("/testimonials", h.GetApprovedTestimonials).Methods("GET")
	router.HandleFunc("/testimonials/all", utils.AuthMiddleware(h.GetAllTestimonials)).Methods("GET")
	router.HandleFunc("/testimonials/{id}/approve", utils.AuthMiddleware(h.ApproveTestimonial)).Methods("PATCH")
	router.HandleFunc("/testimonials/{id}", utils.AuthMiddleware(h.DeleteTestimonial)).Methods("DELETE")
}

// SubmitTestimonial accepts a public submission. New testimonials start
// unapproved and stay off the marketing site until an owner approves them.
func (h *TestimonialHandler) SubmitTestimonial(w http.ResponseWriter, r *http.Request) {
	var testimonial models.Testimonial
	if err := json.NewDecoder(r.Body).Decode(&testimonial); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if testimonial.Name == "" || testimonial.Content == "" {
		http.Error(w, "Name and content are required", http.StatusBadRequest)
		return
	}
	testimonial.Approved = false

	if err := h.db.Create(&testimonial).Error; err != nil {
		http.Error(w, "Error creating testimonial", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(testimonial)
}

func (h *TestimonialHandler) GetApprovedTestimonials(w http.ResponseWriter, r *http.Request) {
	var testimonials []models.Testimonial
	if err := h.db.Where("approved = ?", true).Order("created_at DESC").Find(&testimonials).Error; err != nil {
		http.Error(w, "Error retrieving testimonials", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testimonials)
}

func (h *TestimonialHandler) GetAllTestimonials(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Testimonial{})
	if pending := r.URL.Query().Get("pending"); pending == "true" {
		query = query.Where("approved = ?", false)
	}

	var testimonials []models.Testimonial
	if err := query.Order("created_at DESC").Find(&testimonials).Error; err != nil {
		http.Error(w, "Error retrieving testimonials", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(testimonials)
}

func (h *TestimonialHandler) ApproveTestimonial(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	testimonialID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid testimonial ID", http.StatusBadRequest)
		return
	}

	result := h.db.Model(&models.Testimonial{}).Where("id = ?", testimonialID).
		Update("approved", true)
	if result.Error != nil {
		http.Error(w, "Error approving testimonial", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Testimonial not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Testimonial approved",
	})
}

func (h *TestimonialHandler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	testimonialID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid testimonial ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Testimonial{}, testimonialID)
	if result.Error != nil {
		http.Error(w, "Error deleting testimonial", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Testimonial not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Testimonial deleted successfully",
	})
}
