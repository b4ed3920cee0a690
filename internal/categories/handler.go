package categories

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListPublic(c *gin.Context) {
	items, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) AdminList(c *gin.Context) {
	items, err := h.repo.AdminListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateCategoryReq struct {
	Name      string `json:"name" binding:"required,max=100"`
	SortOrder int    `json:"sort_order"`
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		_ = c.Error(apperr.Validation("name is required"))
		return
	}
	created, err := h.repo.Create(c.Request.Context(), name, req.SortOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type UpdateCategoryReq struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req UpdateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), id, req.Name, req.SortOrder, req.IsActive)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) AdminDelete(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted", "id": id})
}
