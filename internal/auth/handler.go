package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/mail"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Dependencies struct {
	JWT      *JWTManager
	Users    *UserRepo
	Sessions *SessionRepo
	Resets   *ResetRepo
	Mailer   mail.Mailer
	Log      *slog.Logger
	OTPTTL   time.Duration
}

// reset codes are this many digits; resetReq checks the same length
const otpDigits = 6

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	if d.OTPTTL <= 0 {
		d.OTPTTL = 10 * time.Minute
	}
	return &Handler{deps: d}
}

type registerReq struct {
	Username string    `json:"username" binding:"required,min=2,max=50"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	Role     user.Role `json:"role" binding:"omitempty,oneof=wholesaler retailer"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotReq struct {
	Email string `json:"email" binding:"required,email"`
}

type resetReq struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if req.Role == "" {
		req.Role = user.RoleRetailer
	}

	ctx := c.Request.Context()
	taken, err := h.deps.Users.EmailTaken(ctx, req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if taken {
		_ = c.Error(apperr.Conflict("email already exists"))
		return
	}

	pwHash, err := HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := h.deps.Users.Create(ctx, strings.TrimSpace(req.Username), req.Email, pwHash, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	u, err := h.deps.Users.ByEmail(ctx, normalizeEmail(req.Email))
	if apperr.KindOf(err) == apperr.KindNotFound || (err == nil && !u.IsActive) {
		burnPasswordCheck(req.Password)
		_ = c.Error(apperr.Unauthenticated("invalid email or password"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		_ = c.Error(apperr.Unauthenticated("invalid email or password"))
		return
	}

	token, exp, err := h.deps.JWT.Sign(u)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// the session row carries the same expiry as the token
	if err := h.deps.Sessions.Store(ctx, u.ID, HashToken(token), exp); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"expires_at": exp,
		"user":       u,
	})
}

// Logout is idempotent: an unknown or already revoked token still yields 200.
func (h *Handler) Logout(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		_ = c.Error(apperr.Validation("no token provided"))
		return
	}
	if err := h.deps.Sessions.Revoke(c.Request.Context(), HashToken(token)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.deps.Users.ByID(c.Request.Context(), Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ForgotPassword mails a reset code. It answers 200 whether or not the email exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	u, err := h.deps.Users.ByEmail(ctx, normalizeEmail(req.Email))
	if err != nil || !u.IsActive {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	otp, err := util.OTP(otpDigits)
	if err != nil {
		_ = c.Error(err)
		return
	}
	exp := time.Now().Add(h.deps.OTPTTL)
	if err := h.deps.Resets.Upsert(ctx, u.ID, HashToken(otp), exp); err != nil {
		_ = c.Error(err)
		return
	}

	// a mail failure must not reveal anything to the caller
	if err := h.sendOTP(ctx, u.Email, otp, exp); err != nil {
		h.deps.Log.Warn("reset mail failed", "user_id", u.ID, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	u, err := h.deps.Users.ByEmail(ctx, normalizeEmail(req.Email))
	if err != nil || !u.IsActive {
		_ = c.Error(apperr.Validation("invalid or expired otp"))
		return
	}
	newHash, err := HashPassword(req.NewPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	err = h.deps.Users.ResetPassword(ctx, u.ID, HashToken(req.OTP), newHash)
	if errors.Is(err, errResetCode) {
		if ferr := h.deps.Resets.CountFailure(ctx, u.ID); ferr != nil {
			err = ferr
		}
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) sendOTP(ctx context.Context, to, otp string, exp time.Time) error {
	body := "Your password reset code is: " + otp + "\n\n" +
		"It expires at: " + exp.Format(time.RFC1123) + "\n\n" +
		"If you didn't request this, ignore this email."
	return h.deps.Mailer.Send(ctx, to, "Reset password code", body)
}
