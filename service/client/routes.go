package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/clients", utils.AuthMiddleware(h.GetClients)).Methods("GET")
	router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.GetClient)).Methods("GET")
	router.HandleFunc("/clients", utils.AuthMiddleware(h.CreateClient)).Methods("POST")
	router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.UpdateClient)).Methods("PUT")
	router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.DeleteClient)).Methods("DELETE")
}

func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 50

	query := h.db.Model(&models.Client{})
	if search := r.URL.Query().Get("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "Error retrieving clients", http.StatusInternalServerError)
		return
	}

	var clients []models.Client
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("full_name").Find(&clients).Error; err != nil {
		http.Error(w, "Error retrieving clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"clients":     clients,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := h.db.First(&client, clientID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if client.FullName == "" || client.Email == "" {
		http.Error(w, "Full name and email are required", http.StatusBadRequest)
		return
	}

	var existing models.Client
	if result := h.db.Where("email = ?", client.Email).First(&existing); !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Email is already in use", http.StatusConflict)
		return
	}

	if err := h.db.Create(&client).Error; err != nil {
		http.Error(w, "Error creating client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var updateData models.Client
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := h.db.First(&client, clientID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	if updateData.FullName != "" {
		client.FullName = updateData.FullName
	}
	if updateData.Email != "" {
		client.Email = updateData.Email
	}
	if updateData.Phone != "" {
		client.Phone = updateData.Phone
	}
	client.Notes = updateData.Notes

	if err := h.db.Save(&client).Error; err != nil {
		http.Error(w, "Error updating client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Client{}, clientID)
	if result.Error != nil {
		http.Error(w, "Error deleting client", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Client deleted successfully",
	})
}
