package notifications

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRouter(t *testing.T, actor user.Actor) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	h := NewHandler(NewRepo(mock))
	r := gin.New()
	r.Use(middleware.ErrorHandler(discard, false), func(c *gin.Context) { auth.SetActor(c, actor) })
	r.GET("/notifications", h.List)
	r.GET("/notifications/counts", h.Counts)
	r.GET("/notifications/all", h.ListAll)
	r.PATCH("/notifications/:id/read", h.MarkRead)
	r.PATCH("/notifications/read-all", h.MarkAllRead)
	r.DELETE("/notifications/:id", h.Delete)
	return r, mock
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

var cols = []string{"id", "user_id", "type", "title", "message", "related_id", "is_read", "created_at"}

func TestListAppliesFilters(t *testing.T) {
	r, mock := newRouter(t, user.Actor{ID: 4, Role: user.RoleRetailer})
	related := int64(12)

	mock.ExpectQuery("FROM notifications n WHERE n.user_id").
		WithArgs(int64(4), false, notification.TypeOrderUpdated, 10, 0).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(1), int64(4), notification.TypeOrderUpdated, "Order Updated", "shipped", &related, false, time.Now()))

	w := serve(r, http.MethodGet, "/notifications?is_read=false&type=order_updated&limit=10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Items []notification.Notification `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(12), *body.Items[0].RelatedID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountsAggregatesTypes(t *testing.T) {
	r, mock := newRouter(t, user.Actor{ID: 4, Role: user.RoleWholesaler})
	mock.ExpectQuery("GROUP BY type").WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"type", "count", "unread"}).
			AddRow(notification.TypeOrderPlaced, 3, 1).
			AddRow(notification.TypeProductApproved, 2, 2))

	w := serve(r, http.MethodGet, "/notifications/counts")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var counts notification.Counts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, 5, counts.Total)
	assert.Equal(t, 3, counts.Unread)
	assert.Equal(t, 3, counts.ByType[notification.TypeOrderPlaced])
}

func TestMarkReadOnlyOwnRows(t *testing.T) {
	r, mock := newRouter(t, user.Actor{ID: 4, Role: user.RoleRetailer})
	mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int64(9), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	w := serve(r, http.MethodPatch, "/notifications/9/read")
	assert.Equal(t, http.StatusNotFound, w.Code)

	mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int64(9), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	w = serve(r, http.MethodPatch, "/notifications/9/read")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllAndDelete(t *testing.T) {
	r, mock := newRouter(t, user.Actor{ID: 4, Role: user.RoleRetailer})
	mock.ExpectExec("AND is_read = false").WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec("DELETE FROM notifications").WithArgs(int64(2), int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	w := serve(r, http.MethodPatch, "/notifications/read-all")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":3`)

	w = serve(r, http.MethodDelete, "/notifications/2")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllJoinsRecipient(t *testing.T) {
	r, mock := newRouter(t, user.Actor{ID: 1, Role: user.RoleAdmin})
	mock.ExpectQuery("JOIN users u").WithArgs(100, 0).
		WillReturnRows(pgxmock.NewRows(append(cols, "username", "email", "role")).
			AddRow(int64(1), int64(4), notification.TypeOrderPlaced, "New Order", "m", (*int64)(nil), false, time.Now(),
				"ravi", "ravi@example.com", "wholesaler"))

	w := serve(r, http.MethodGet, "/notifications/all")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"ravi"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyAdminsFansOut(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	related := int64(5)
	mock.ExpectExec("SELECT id, \\$2, \\$3, \\$4, \\$5 FROM users").
		WithArgs(user.RoleAdmin, notification.TypeProductUpload, "New Product", "x", &related).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err = NotifyAdmins(context.Background(), mock, Draft{
		Type: notification.TypeProductUpload, Title: "New Product", Message: "x", RelatedID: &related,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
