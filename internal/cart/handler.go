package cart

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) GetMyCart(c *gin.Context) {
	items, err := h.repo.Items(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Summary(c *gin.Context) {
	s, err := h.repo.Summary(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) Validate(c *gin.Context) {
	invalid, err := h.repo.Validate(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_valid": len(invalid) == 0, "invalid_items": invalid})
}

type AddItemReq struct {
	VariantID int64 `json:"variant_id" binding:"required,min=1"`
	Quantity  *int  `json:"quantity"`
}

func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	line, err := h.repo.AddItem(c.Request.Context(), auth.Actor(c).ID, req.VariantID, qty)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

type UpdateQtyReq struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) UpdateQty(c *gin.Context) {
	variantID, err := util.ParamID(c, "variantId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req UpdateQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	line, removed, err := h.repo.UpdateQuantity(c.Request.Context(), auth.Actor(c).ID, variantID, *req.Quantity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if removed {
		c.JSON(http.StatusOK, gin.H{"removed": true, "variant_id": variantID})
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	variantID, err := util.ParamID(c, "variantId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	removed, err := h.repo.RemoveItem(c.Request.Context(), auth.Actor(c).ID, variantID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !removed {
		_ = c.Error(apperr.NotFound("cart item not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true, "variant_id": variantID})
}

func (h *Handler) Clear(c *gin.Context) {
	n, err := h.repo.Clear(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed_count": n})
}

func (h *Handler) MoveToWishlist(c *gin.Context) {
	variantID, err := util.ParamID(c, "variantId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	productID, err := h.repo.MoveToWishlist(c.Request.Context(), auth.Actor(c).ID, variantID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item moved to wishlist successfully", "product_id": productID})
}
