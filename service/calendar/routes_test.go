package calendar

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func testConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost/oauth2callback",
		Endpoint:     google.Endpoint,
	}
}

func TestParseStateUserID(t *testing.T) {
	id, err := parseStateUserID("user_42_1740000000")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, state := range []string{"", "user_42", "account_42_1740000000", "user_abc_1740000000"} {
		_, err := parseStateUserID(state)
		assert.Error(t, err, state)
	}
}

func TestAuthURLRequestsOfflineAccess(t *testing.T) {
	c := &Client{config: testConfig()}

	url := c.AuthURL("user_1_1740000000")

	assert.Contains(t, url, "state=user_1_1740000000")
	assert.Contains(t, url, "access_type=offline")
}

func TestCallbackUnconfigured(t *testing.T) {
	h := NewCalendarHandler(&Client{})

	router := mux.NewRouter()
	h.RegisterCallbackRoute(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=abc&state=user_1_1740000000", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCallbackRejectsMissingCodeAndBadState(t *testing.T) {
	client := &Client{config: testConfig()}
	h := NewCalendarHandler(client)

	router := mux.NewRouter()
	h.RegisterCallbackRoute(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth2callback", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/oauth2callback?code=abc&state=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
