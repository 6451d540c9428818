package provider

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type ProviderHandler struct {
	db *gorm.DB
}

func NewProviderHandler(db *gorm.DB) *ProviderHandler {
	return &ProviderHandler{db: db}
}

func (h *ProviderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/providers", h.GetProviders).Methods("GET")
	router.HandleFunc("/providers/{id}", h.GetProvider).Methods("GET")
	router.HandleFunc("/providers", utils.AuthMiddleware(h.CreateProvider)).Methods("POST")
	router.HandleFunc("/providers/{id}", utils.AuthMiddleware(h.UpdateProvider)).Methods("PUT")
	router.HandleFunc("/providers/{id}", utils.AuthMiddleware(h.DeleteProvider)).Methods("DELETE")
	router.HandleFunc("/providers/{id}/photo", utils.AuthMiddleware(h.UploadPhoto)).Methods("POST")
	router.HandleFunc("/photos/{filename}", h.ServePhoto).Methods("GET")
}

func (h *ProviderHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Provider{})
	if r.URL.Query().Get("includeInactive") == "" {
		query = query.Where("active = ?", true)
	}

	var providers []models.Provider
	if err := query.Find(&providers).Error; err != nil {
		http.Error(w, "Error retrieving providers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(providers)
}

func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	var provider models.Provider
	if err := h.db.Preload("Availability").First(&provider, providerID).Error; err != nil {
		http.Error(w, "Provider not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(provider)
}

func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var provider models.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if provider.FullName == "" {
		http.Error(w, "Full name is required", http.StatusBadRequest)
		return
	}
	provider.Active = true

	if err := h.db.Create(&provider).Error; err != nil {
		http.Error(w, "Error creating provider", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(provider)
}

func (h *ProviderHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	var updateData models.Provider
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var provider models.Provider
	if err := h.db.First(&provider, providerID).Error; err != nil {
		http.Error(w, "Provider not found", http.StatusNotFound)
		return
	}

	provider.FullName = updateData.FullName
	provider.Title = updateData.Title
	provider.Bio = updateData.Bio
	provider.Email = updateData.Email
	provider.Phone = updateData.Phone
	provider.Active = updateData.Active

	if err := h.db.Save(&provider).Error; err != nil {
		http.Error(w, "Error updating provider", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(provider)
}

// DeleteProvider removes a provider. Appointments keep their rows with a
// null provider reference.
func (h *ProviderHandler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	if err := h.db.Model(&models.Appointment{}).Where("provider_id = ?", providerID).
		Update("provider_id", nil).Error; err != nil {
		http.Error(w, "Error detaching appointments", http.StatusInternalServerError)
		return
	}

	result := h.db.Delete(&models.Provider{}, providerID)
	if result.Error != nil {
		http.Error(w, "Error deleting provider", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Provider not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Provider deleted successfully",
	})
}

func (h *ProviderHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	providerID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid provider ID", http.StatusBadRequest)
		return
	}

	var provider models.Provider
	if err := h.db.First(&provider, providerID).Error; err != nil {
		http.Error(w, "Provider not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, err := utils.SavePhoto(file, header)
	if err != nil {
		http.Error(w, "Error saving photo", http.StatusInternalServerError)
		return
	}

	provider.PhotoPath = filename
	if err := h.db.Save(&provider).Error; err != nil {
		http.Error(w, "Error updating provider", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(provider)
}

func (h *ProviderHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	// Guard against directory traversal.
	if filepath.Base(filename) != filename {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	photoPath := filepath.Join("uploads", "photos", filename)
	if _, err := os.Stat(photoPath); os.IsNotExist(err) {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, photoPath)
}
