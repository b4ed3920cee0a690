package samples

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/sample"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/middleware"
	"github.com/kumarbhakta81/Garment-platform/internal/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	owner    = user.Actor{ID: 20, Role: user.RoleWholesaler}
	stranger = user.Actor{ID: 21, Role: user.RoleWholesaler}
	admin    = user.Actor{ID: 1, Role: user.RoleAdmin}
	retailer = user.Actor{ID: 30, Role: user.RoleRetailer}
)

func setup(t *testing.T, actor user.Actor) (*gin.Engine, pgxmock.PgxPoolIface, string) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	dir := t.TempDir()
	h := NewHandler(NewRepo(mock), upload.NewStore(dir, 1))
	r := gin.New()
	r.Use(middleware.ErrorHandler(discard, false), func(c *gin.Context) { auth.SetActor(c, actor) })
	r.GET("/samples", h.List)
	r.POST("/samples", h.Create)
	r.DELETE("/samples/:id", h.Delete)
	r.PATCH("/samples/:id/status", h.UpdateStatus)
	return r, mock, dir
}

var cols = []string{
	"id", "product_id", "product_name", "wholesaler_id", "username",
	"title", "description", "file_url", "status", "created_at", "updated_at",
}

func sampleRows(id int64, fileURL string, status sample.Status) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(cols).AddRow(id, int64(5), "Linen Shirt", owner.ID, "ravi",
		"Swatch", "", fileURL, status, now, now)
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("sample", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateWithFileNotifiesAdmins(t *testing.T) {
	r, mock, dir := setup(t, owner)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR SHARE").WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"wholesaler_id", "name"}).AddRow(owner.ID, "Linen Shirt"))
	mock.ExpectQuery("INSERT INTO samples").
		WithArgs(int64(5), "Swatch", "", pgxmock.AnyArg()).
		WillReturnRows(sampleRows(7, "/uploads/samples/sample-x.txt", sample.StatusPending))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(user.RoleAdmin, notification.TypeSampleUpload, "New Sample Upload", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	body, ctype := multipartBody(t, map[string]string{"product_id": "5", "title": "Swatch"}, "notes.txt", []byte("cotton 200gsm\n"))
	req := httptest.NewRequest(http.MethodPost, "/samples", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entries, err := os.ReadDir(filepath.Join(dir, "samples"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForForeignProductRemovesFile(t *testing.T) {
	r, mock, dir := setup(t, stranger)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR SHARE").WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"wholesaler_id", "name"}).AddRow(owner.ID, "Linen Shirt"))
	mock.ExpectRollback()

	body, ctype := multipartBody(t, map[string]string{"product_id": "5", "title": "Swatch"}, "notes.txt", []byte("cotton\n"))
	req := httptest.NewRequest(http.MethodPost, "/samples", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	entries, err := os.ReadDir(filepath.Join(dir, "samples"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRequiresTitle(t *testing.T) {
	r, _, _ := setup(t, owner)
	body, ctype := multipartBody(t, map[string]string{"product_id": "5"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/samples", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetailerSeesApprovedOnly(t *testing.T) {
	r, mock, _ := setup(t, retailer)
	mock.ExpectQuery("FROM samples s").WithArgs(sample.StatusApproved).
		WillReturnRows(sampleRows(7, "", sample.StatusApproved))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/samples?status=pending", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWholesalerListIsScoped(t *testing.T) {
	r, mock, _ := setup(t, owner)
	mock.ExpectQuery("p.wholesaler_id = \\$2").WithArgs(int64(5), owner.ID).
		WillReturnRows(pgxmock.NewRows(cols))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/samples?product_id=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestRejectNotifiesWholesaler(t *testing.T) {
	r, mock, _ := setup(t, admin)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF s").WithArgs(int64(7)).
		WillReturnRows(sampleRows(7, "", sample.StatusPending))
	mock.ExpectExec("UPDATE samples SET status").WithArgs(int64(7), sample.StatusRejected).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(owner.ID, notification.TypeSampleRejected, "Sample Rejected",
			`Your sample "Swatch" for product "Linen Shirt" has been rejected`, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/samples/7/status", bytes.NewBufferString(`{"status":"rejected"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByStrangerForbidden(t *testing.T) {
	r, mock, _ := setup(t, stranger)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE OF s").WithArgs(int64(7)).WillReturnRows(sampleRows(7, "", sample.StatusPending))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/samples/7", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
