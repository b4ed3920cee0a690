package categories

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarbhakta81/Garment-platform/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var cols = []string{"id", "name", "slug", "is_active", "sort_order", "created_at", "updated_at"}

func setup(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewHandler(NewRepo(mock))
	r := gin.New()
	r.Use(middleware.ErrorHandler(discard, false))
	r.GET("/categories", h.ListPublic)
	r.GET("/admin/categories", h.AdminList)
	r.POST("/categories", h.AdminCreate)
	r.PUT("/categories/:id", h.AdminUpdate)
	r.DELETE("/categories/:id", h.AdminDelete)
	return r, mock
}

func call(r http.Handler, method, path, payload string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestListPublicOnlyActive(t *testing.T) {
	r, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery("WHERE is_active = true").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(1), "Shirts", "shirts", true, 0, now, now))

	w := call(r, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"shirts"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminListCountsProducts(t *testing.T) {
	r, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WillReturnRows(pgxmock.NewRows(append(cols, "products")).
			AddRow(int64(1), "Shirts", "shirts", true, 0, now, now, 4).
			AddRow(int64(2), "Archive", "archive", false, 9, now, now, 0))

	w := call(r, http.MethodGet, "/admin/categories", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"product_count":4`)
	assert.Contains(t, w.Body.String(), `"product_count":0`)
	assert.Contains(t, w.Body.String(), `"is_active":false`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSlugifiesName(t *testing.T) {
	r, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO categories").WithArgs("Summer Wear", "summer-wear", 2).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(3), "Summer Wear", "summer-wear", true, 2, now, now))

	w := call(r, http.MethodPost, "/categories", `{"name":"  Summer Wear ","sort_order":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicate(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery("INSERT INTO categories").WithArgs("Shirts", "shirts", 0).WillReturnError(&pgconn.PgError{Code: "23505"})

	w := call(r, http.MethodPost, "/categories", `{"name":"Shirts"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "category already exists")
}

func TestUpdateMissing(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectQuery("UPDATE categories").WithArgs(int64(9), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

	w := call(r, http.MethodPut, "/categories/9", `{"is_active":false}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInUse(t *testing.T) {
	r, mock := setup(t)
	mock.ExpectExec("DELETE FROM categories").WithArgs(int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	w := call(r, http.MethodDelete, "/categories/2", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodDelete, "/categories/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
