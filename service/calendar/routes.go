package calendar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/serenitycare/Serenity-server/cmd/utils"
	"github.com/gorilla/mux"
)

type CalendarHandler struct {
	client *Client
}

func NewCalendarHandler(client *Client) *CalendarHandler {
	return &CalendarHandler{client: client}
}

func (h *CalendarHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/calendar/auth", utils.AuthMiddleware(h.GoogleAuth)).Methods("GET")
}

// RegisterCallbackRoute attaches the OAuth2 callback at the server root; it
// must stay outside the authenticated API prefix.
func (h *CalendarHandler) RegisterCallbackRoute(router *mux.Router) {
	router.HandleFunc("/oauth2callback", h.GoogleOAuth2Callback).Methods("GET")
}

// GoogleAuth starts the OAuth2 flow for the signed-in owner and returns the
// consent URL.
func (h *CalendarHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		http.Error(w, "Google Calendar not configured", http.StatusInternalServerError)
		return
	}

	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state := fmt.Sprintf("user_%d_%d", userID, time.Now().Unix())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"auth_url": h.client.AuthURL(state),
		"state":    state,
	})
}

// GoogleOAuth2Callback exchanges the authorization code and stores the token
// for the owner encoded in the state parameter.
func (h *CalendarHandler) GoogleOAuth2Callback(w http.ResponseWriter, r *http.Request) {
	if !h.client.Configured() {
		http.Error(w, "Google Calendar not configured", http.StatusInternalServerError)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization code required", http.StatusBadRequest)
		return
	}

	userID, err := parseStateUserID(r.URL.Query().Get("state"))
	if err != nil {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if err := h.client.Exchange(r.Context(), userID, code); err != nil {
		http.Error(w, "Failed to exchange authorization code", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Calendar connected successfully",
	})
}

func parseStateUserID(state string) (uint, error) {
	parts := strings.Split(state, "_")
	if len(parts) != 3 || parts[0] != "user" {
		return 0, fmt.Errorf("malformed state: %s", state)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
