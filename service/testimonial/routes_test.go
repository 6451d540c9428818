package testimonial_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/serenitycare/Serenity-server/cmd/models"
	"github.com/serenitycare/Serenity-server/service/testimonial"
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

	h := testimonial.NewTestimonialHandler(gdb)
	router := mux.NewRouter()
	router.HandleFunc("/testimonials", h.SubmitTestimonial).Methods("POST")
	router.HandleFunc("/testimonials", h.GetApprovedTestimonials).Methods("GET")
	router.HandleFunc("/testimonials/{id}/approve", h.ApproveTestimonial).Methods("PATCH")
	return dbMock, router
}

func TestSubmitTestimonialStartsUnapproved(t *testing.T) {
	dbMock, router := setupHandler(t)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`INSERT INTO "testimonials"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	dbMock.ExpectCommit()

	// The client cannot pre-approve their own testimonial.
	body := `{"name": "Jamie", "content": "Wonderful practice", "approved": true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/testimonials",
		bytes.NewBufferString(body)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Testimonial
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.False(t, created.Approved)
}

func TestSubmitTestimonialRequiresNameAndContent(t *testing.T) {
	dbMock, router := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/testimonials",
		bytes.NewBufferString(`{"name": "Jamie"}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetApprovedTestimonials(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "testimonials"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "deleted_at",
			"name", "email", "content", "approved"}).
			AddRow(1, now, now, nil, "Jamie", "", "Wonderful practice", true))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/testimonials", nil))

	require.NoError(t, dbMock.ExpectationsWereMet())
	require.Equal(t, http.StatusOK, rec.Code)

	var testimonials []models.Testimonial
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&testimonials))
	require.Len(t, testimonials, 1)
	assert.True(t, testimonials[0].Approved)
}

func TestApproveTestimonialNotFound(t *testing.T) {
	dbMock, router := setupHandler(t)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "testimonials"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/testimonials/99/approve", nil))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
