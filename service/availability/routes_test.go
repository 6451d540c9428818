package availability_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/serenitycare/Serenity-server/service/availability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupHandler(t *testing.T) (sqlmock.Sqlmock, *mux.Router) {
	t.Helper()
	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	h := availability.NewAvailabilityHandler(gdb)

	// Routes registered without the auth middleware so handler behavior is
	// tested in isolation.
	router := mux.NewRouter()
	router.HandleFunc("/availability/slots", h.GetBookableSlots).Methods("GET")
	router.HandleFunc("/availability/{providerId}", h.GetProviderAvailability).Methods("GET")
	router.HandleFunc("/availability/{providerId}", h.SetProviderAvailability).Methods("POST")

	return dbMock, router
}

func availabilityColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "provider_id", "day_of_week", "time_slots"}
}

func appointmentColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "client_id", "provider_id",
		"date", "time", "status", "email", "phone", "note", "calendar_event_id"}
}

func TestGetBookableSlotsMissingParams(t *testing.T) {
	dbMock, router := setupHandler(t)

	for _, target := range []string{
		"/availability/slots",
		"/availability/slots?startDate=2025-03-01",
		"/availability/slots?endDate=2025-03-02",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	// Rejected before any data access.
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGetBookableSlotsInvalidDates(t *testing.T) {
	dbMock, router := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/availability/slots?startDate=March+1&endDate=2025-03-02", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/availability/slots?startDate=2025-03-02&endDate=2025-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGetBookableSlotsHappyPath(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns()).
			AddRow(1, now, now, nil, 1, "saturday", "{09:00,10:00}"))
	dbMock.ExpectQuery(`SELECT \* FROM "appointments"`).
		WillReturnRows(sqlmock.NewRows(appointmentColumns()).
			AddRow(1, now, now, nil, 1, nil, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
				"09:00:00", "pending", "client@example.com", "", "", ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/availability/slots?startDate=2025-02-28&endDate=2025-03-02", nil))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, map[string][]string{"2025-03-01": {"10:00"}}, result)
}

func TestGetProviderAvailability(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns()).
			AddRow(1, now, now, nil, 3, "monday", "{08:00}").
			AddRow(2, now, now, nil, 3, "friday", "{15:00,16:00}"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability/3", nil))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusOK, rec.Code)

	var rules []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "monday", rules[0]["day_of_week"])
}

func TestSetProviderAvailabilityRejectsBadInput(t *testing.T) {
	dbMock, router := setupHandler(t)

	cases := []string{
		`{"funday": ["09:00"]}`,
		`{"monday": ["25:99"]}`,
		`not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/availability/1",
			bytes.NewBufferString(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSetProviderAvailabilityCreatesDay(t *testing.T) {
	dbMock, router := setupHandler(t)

	dbMock.ExpectQuery(`SELECT \* FROM "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns()))
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`INSERT INTO "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/availability/1",
		bytes.NewBufferString(`{"saturday": ["09:00","10:00:00"]}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "saturday", saved[0]["day_of_week"])
	// Seconds are stripped on write.
	assert.Equal(t, []interface{}{"09:00", "10:00"}, saved[0]["time_slots"])
}

func TestSetProviderAvailabilityReplacesExistingDay(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns()).
			AddRow(4, now, now, nil, 1, "monday", "{09:00,10:00}"))
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "recurring_availabilities"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/availability/1",
		bytes.NewBufferString(`{"monday": ["13:00"]}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	require.Len(t, saved, 1)
	// The day's slot list is replaced wholesale, not merged.
	assert.Equal(t, []interface{}{"13:00"}, saved[0]["time_slots"])
}

func TestSetProviderAvailabilityEmptyListClearsDay(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "recurring_availabilities"`).
		WillReturnRows(sqlmock.NewRows(availabilityColumns()).
			AddRow(4, now, now, nil, 1, "monday", "{09:00,10:00}"))
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "recurring_availabilities"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/availability/1",
		bytes.NewBufferString(`{"monday": []}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusCreated, rec.Code)

	var saved []map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	require.Len(t, saved, 1)
	assert.Empty(t, saved[0]["time_slots"])
}
