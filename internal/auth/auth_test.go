package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/middleware"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.UseJSONFieldNames()
	bcryptCost = bcrypt.MinCost
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type harness struct {
	mock   pgxmock.PgxPoolIface
	jwt    *JWTManager
	mailer *fakeMailer
	r      *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	jwtMgr := NewJWTManager(JWTConfig{Issuer: "garment-test", Secret: "test-secret", TTLHours: 24})
	users := NewUserRepo(mock)
	sessions := NewSessionRepo(mock)
	mailer := &fakeMailer{}

	h := NewHandler(Dependencies{
		JWT:      jwtMgr,
		Users:    users,
		Sessions: sessions,
		Resets:   NewResetRepo(mock),
		Mailer:   mailer,
		Log:      discard,
	})

	r := gin.New()
	r.Use(middleware.ErrorHandler(discard, false))
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/forgot-password", h.ForgotPassword)
	r.POST("/reset-password", h.ResetPassword)

	authed := r.Group("/", AuthMiddleware(jwtMgr, sessions))
	authed.GET("/me", h.Me)
	authed.GET("/categories/admin", RequireAction(policy.CategoryManage), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return &harness{mock: mock, jwt: jwtMgr, mailer: mailer, r: r}
}

func (h *harness) do(t *testing.T, method, path, token string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

var userCols = []string{"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func userRows(id int64, email, hash string, role user.Role, active bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userCols).AddRow(id, "asha", email, hash, role, active, now, now)
}

func TestRegisterDefaultsToRetailer(t *testing.T) {
	h := newHarness(t)

	h.mock.ExpectQuery("SELECT EXISTS").WithArgs("asha@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	h.mock.ExpectQuery("INSERT INTO users").
		WithArgs("asha", "asha@example.com", pgxmock.AnyArg(), user.RoleRetailer).
		WillReturnRows(userRows(1, "asha@example.com", "hash", user.RoleRetailer, true))

	w, body := h.do(t, http.MethodPost, "/register", "", gin.H{
		"username": "asha", "email": "Asha@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := body["user"].(map[string]any)
	assert.Equal(t, "retailer", u["role"])
	assert.NotContains(t, u, "password_hash")
	assert.NotContains(t, w.Body.String(), "secret1")
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("SELECT EXISTS").WithArgs("asha@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	w, body := h.do(t, http.MethodPost, "/register", "", gin.H{
		"username": "asha", "email": "asha@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email already exists", body["message"])
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(t, http.MethodPost, "/register", "", gin.H{
		"username": "asha", "email": "asha@example.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	h.mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows(7, "asha@example.com", hash, user.RoleRetailer, true))

	w, body := h.do(t, http.MethodPost, "/login", "", gin.H{"email": "asha@example.com", "password": "nope123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", body["message"])
}

func TestLoginUnknownEmail(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM users WHERE email").WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	w, _ := h.do(t, http.MethodPost, "/login", "", gin.H{"email": "ghost@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	h.mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows(7, "asha@example.com", hash, user.RoleRetailer, true))
	h.mock.ExpectExec("INSERT INTO sessions").
		WithArgs(int64(7), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w, body := h.do(t, http.MethodPost, "/login", "", gin.H{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// live session
	h.mock.ExpectQuery("FROM sessions s").WithArgs(HashToken(token)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role"}).AddRow(int64(7), "asha@example.com", user.RoleRetailer))
	h.mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(7)).
		WillReturnRows(userRows(7, "asha@example.com", hash, user.RoleRetailer, true))

	w, body = h.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "asha@example.com", body["email"])

	h.mock.ExpectExec("DELETE FROM sessions").WithArgs(HashToken(token)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	w, _ = h.do(t, http.MethodPost, "/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the signature still verifies but the session row is gone
	_, err = h.jwt.Parse(token)
	require.NoError(t, err)

	h.mock.ExpectQuery("FROM sessions s").WithArgs(HashToken(token)).WillReturnError(pgx.ErrNoRows)
	w, body = h.do(t, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "session expired or invalid", body["message"])

	// logging out twice is fine
	h.mock.ExpectExec("DELETE FROM sessions").WithArgs(HashToken(token)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	w, _ = h.do(t, http.MethodPost, "/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "no token provided", body["message"])

	w, body = h.do(t, http.MethodGet, "/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid or expired token", body["message"])

	other := NewJWTManager(JWTConfig{Issuer: "garment-test", Secret: "another-secret", TTLHours: 1})
	forged, _, err := other.Sign(user.User{ID: 1, Email: "x@example.com", Role: user.RoleAdmin})
	require.NoError(t, err)
	w, _ = h.do(t, http.MethodGet, "/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestExpiredTokenRejected(t *testing.T) {
	h := newHarness(t)
	past := NewJWTManager(JWTConfig{Issuer: "garment-test", Secret: "test-secret", TTLHours: 1})
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := past.Sign(user.User{ID: 7, Email: "asha@example.com", Role: user.RoleRetailer})
	require.NoError(t, err)

	w, _ := h.do(t, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActionUsesSessionRole(t *testing.T) {
	h := newHarness(t)
	token, _, err := h.jwt.Sign(user.User{ID: 7, Email: "asha@example.com", Role: user.RoleAdmin})
	require.NoError(t, err)

	// the role comes from the users table, not from the token claims
	h.mock.ExpectQuery("FROM sessions s").WithArgs(HashToken(token)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role"}).AddRow(int64(7), "asha@example.com", user.RoleRetailer))
	w, body := h.do(t, http.MethodGet, "/categories/admin", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, body["message"])

	h.mock.ExpectQuery("FROM sessions s").WithArgs(HashToken(token)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role"}).AddRow(int64(7), "asha@example.com", user.RoleAdmin))
	w, _ = h.do(t, http.MethodGet, "/categories/admin", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM users WHERE email").WithArgs("ghost@example.com").WillReturnError(pgx.ErrNoRows)

	w, _ := h.do(t, http.MethodPost, "/forgot-password", "", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.mailer.sent)
}

func TestForgotPasswordMailsCode(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows(7, "asha@example.com", "hash", user.RoleRetailer, true))
	h.mock.ExpectExec("INSERT INTO password_resets").
		WithArgs(int64(7), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w, _ := h.do(t, http.MethodPost, "/forgot-password", "", gin.H{"email": "asha@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "asha@example.com", h.mailer.sent[0].to)
	assert.Contains(t, h.mailer.sent[0].body, "reset code")
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func expectResetUser(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows(7, "asha@example.com", "hash", user.RoleRetailer, true))
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	h := newHarness(t)
	expectResetUser(h.mock)
	h.mock.ExpectBegin()
	h.mock.ExpectQuery("DELETE FROM password_resets").
		WithArgs(int64(7), HashToken("123456"), maxResetAttempts).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(int64(7)))
	h.mock.ExpectExec("UPDATE users SET password_hash").WithArgs(pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	h.mock.ExpectExec("DELETE FROM sessions").WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	h.mock.ExpectCommit()

	w, _ := h.do(t, http.MethodPost, "/reset-password", "", gin.H{
		"email": "asha@example.com", "otp": "123456", "new_password": "newsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestResetPasswordWrongCode(t *testing.T) {
	h := newHarness(t)
	expectResetUser(h.mock)
	h.mock.ExpectBegin()
	h.mock.ExpectQuery("DELETE FROM password_resets").
		WithArgs(int64(7), HashToken("000000"), maxResetAttempts).
		WillReturnError(pgx.ErrNoRows)
	h.mock.ExpectRollback()
	h.mock.ExpectExec("UPDATE password_resets SET attempts = attempts \\+ 1").WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	w, body := h.do(t, http.MethodPost, "/reset-password", "", gin.H{
		"email": "asha@example.com", "otp": "000000", "new_password": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired otp", body["message"])
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestResetCodeWorksOnce(t *testing.T) {
	h := newHarness(t)
	reset := gin.H{"email": "asha@example.com", "otp": "123456", "new_password": "newsecret"}

	expectResetUser(h.mock)
	h.mock.ExpectBegin()
	h.mock.ExpectQuery("DELETE FROM password_resets").
		WithArgs(int64(7), HashToken("123456"), maxResetAttempts).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(int64(7)))
	h.mock.ExpectExec("UPDATE users SET password_hash").WithArgs(pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	h.mock.ExpectExec("DELETE FROM sessions").WithArgs(int64(7)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	h.mock.ExpectCommit()

	w, _ := h.do(t, http.MethodPost, "/reset-password", "", reset)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the row is gone, so replaying the code changes nothing
	expectResetUser(h.mock)
	h.mock.ExpectBegin()
	h.mock.ExpectQuery("DELETE FROM password_resets").
		WithArgs(int64(7), HashToken("123456"), maxResetAttempts).
		WillReturnError(pgx.ErrNoRows)
	h.mock.ExpectRollback()
	h.mock.ExpectExec("UPDATE password_resets SET attempts").WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	w, _ = h.do(t, http.MethodPost, "/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestForgotPasswordRestoresAttemptBudget(t *testing.T) {
	h := newHarness(t)
	expectResetUser(h.mock)
	h.mock.ExpectExec("attempts=0").
		WithArgs(int64(7), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w, _ := h.do(t, http.MethodPost, "/forgot-password", "", gin.H{"email": "asha@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestUserDeleteMapsForeignKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM users").WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	err = NewUserRepo(mock).Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, "user not found", err.Error())
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}
