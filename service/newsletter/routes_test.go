package newsletter_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/serenitycare/Serenity-server/service/mailer"
	"github.com/serenitycare/Serenity-server/service/newsletter"
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

	h := newsletter.NewNewsletterHandler(gdb, mailer.NewFromEnv())
	router := mux.NewRouter()
	router.HandleFunc("/newsletter/subscribe", h.Subscribe).Methods("POST")
	router.HandleFunc("/newsletter/unsubscribe/{token}", h.Unsubscribe).Methods("GET")
	return dbMock, router
}

func signupColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at",
		"email", "name", "unsubscribe_token", "active"}
}

func TestSubscribeNewEmail(t *testing.T) {
	dbMock, router := setupHandler(t)

	dbMock.ExpectQuery(`SELECT \* FROM "newsletter_signups"`).
		WillReturnRows(sqlmock.NewRows(signupColumns()))
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`INSERT INTO "newsletter_signups"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/newsletter/subscribe",
		bytes.NewBufferString(`{"email": "reader@example.com", "name": "Reader"}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubscribeExistingActiveIsNoOp(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "newsletter_signups"`).
		WillReturnRows(sqlmock.NewRows(signupColumns()).
			AddRow(1, now, now, nil, "reader@example.com", "Reader", "token-1", true))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/newsletter/subscribe",
		bytes.NewBufferString(`{"email": "reader@example.com"}`)))

	// No write happens for an already-active subscription.
	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubscribeReactivatesInactive(t *testing.T) {
	dbMock, router := setupHandler(t)

	now := time.Now()
	dbMock.ExpectQuery(`SELECT \* FROM "newsletter_signups"`).
		WillReturnRows(sqlmock.NewRows(signupColumns()).
			AddRow(1, now, now, nil, "reader@example.com", "Reader", "token-1", false))
	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "newsletter_signups"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/newsletter/subscribe",
		bytes.NewBufferString(`{"email": "reader@example.com"}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubscribeRequiresEmail(t *testing.T) {
	dbMock, router := setupHandler(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/newsletter/subscribe",
		bytes.NewBufferString(`{"name": "Reader"}`)))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnsubscribeUnknownToken(t *testing.T) {
	dbMock, router := setupHandler(t)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "newsletter_signups"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/newsletter/unsubscribe/bogus-token", nil))

	require.NoError(t, dbMock.ExpectationsWereMet())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
