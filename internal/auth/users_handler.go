package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

// UsersHandler is the admin-only user management surface.
type UsersHandler struct {
	users *UserRepo
}

func NewUsersHandler(users *UserRepo) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(c *gin.Context) {
	var role *user.Role
	if v := user.Role(c.Query("role")); v != "" {
		if !v.Valid() {
			_ = c.Error(apperr.Validation("invalid role"))
			return
		}
		role = &v
	}
	items, err := h.users.List(c.Request.Context(), role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type updateUserReq struct {
	Username *string    `json:"username" binding:"omitempty,min=2,max=50"`
	Email    *string    `json:"email" binding:"omitempty,email"`
	Role     *user.Role `json:"role" binding:"omitempty,oneof=admin wholesaler retailer"`
	IsActive *bool      `json:"is_active"`
}

func (h *UsersHandler) Update(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	u, err := h.users.Update(c.Request.Context(), id, UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Delete(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if id == Actor(c).ID {
		_ = c.Error(apperr.Validation("admins cannot delete their own account"))
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted", "id": id})
}
