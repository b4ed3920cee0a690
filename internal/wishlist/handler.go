package wishlist

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

func (h *Handler) List(c *gin.Context) {
	items, err := h.repo.Items(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Count(c *gin.Context) {
	n, err := h.repo.Count(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) Recommendations(c *gin.Context) {
	limit, _ := util.Pagination(c, DefaultRecommendations, 50)
	items, err := h.repo.Recommendations(c.Request.Context(), auth.Actor(c).ID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type AddReq struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// Add answers 201 for a new entry and 200 when the product was already listed.
func (h *Handler) Add(c *gin.Context) {
	var req AddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	e, err := h.repo.Add(c.Request.Context(), auth.Actor(c).ID, req.ProductID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if e.Exists {
		c.JSON(http.StatusOK, gin.H{"message": "Product already in wishlist", "item": e})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added to wishlist successfully", "item": e})
}

func (h *Handler) Remove(c *gin.Context) {
	productID, err := util.ParamID(c, "productId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	removed, err := h.repo.Remove(c.Request.Context(), auth.Actor(c).ID, productID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !removed {
		_ = c.Error(apperr.NotFound("wishlist item not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true, "product_id": productID})
}

func (h *Handler) Clear(c *gin.Context) {
	n, err := h.repo.Clear(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed_count": n})
}

type MoveToCartReq struct {
	VariantID int64 `json:"variant_id" binding:"required,min=1"`
	Quantity  *int  `json:"quantity"`
}

func (h *Handler) MoveToCart(c *gin.Context) {
	productID, err := util.ParamID(c, "productId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req MoveToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	line, err := h.repo.MoveToCart(c.Request.Context(), auth.Actor(c).ID, productID, req.VariantID, qty)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item moved to cart successfully", "cart_item": line})
}
