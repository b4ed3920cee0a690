package orders

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/order"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) List(c *gin.Context) {
	f := Filter{
		ProductID:    util.QueryInt64(c, "product_id"),
		RetailerID:   util.QueryInt64(c, "retailer_id"),
		WholesalerID: util.QueryInt64(c, "wholesaler_id"),
	}
	if v := order.Status(c.Query("status")); v != "" {
		if !v.Valid() {
			_ = c.Error(apperr.Validation("Invalid status"))
			return
		}
		f.Status = &v
	}
	items, err := h.repo.List(c.Request.Context(), auth.Actor(c), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	o, err := h.repo.Get(c.Request.Context(), auth.Actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) Analytics(c *gin.Context) {
	a, err := h.repo.Analytics(c.Request.Context(), auth.Actor(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type CreateReq struct {
	ProductID       int64  `json:"product_id" binding:"required,min=1"`
	Quantity        int    `json:"quantity" binding:"required,min=1"`
	ShippingAddress string `json:"shipping_address" binding:"required,max=500"`
	OrderNotes      string `json:"order_notes" binding:"max=1000"`
}

func (h *Handler) Create(c *gin.Context) {
	actor := auth.Actor(c)
	if err := policy.Require(actor.Role, policy.OrderCreate); err != nil {
		_ = c.Error(err)
		return
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		_ = c.Error(apperr.Validation("shipping_address is required"))
		return
	}
	o, err := h.repo.Create(c.Request.Context(), actor, CreateInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		ShippingAddress: address,
		Notes:           strings.TrimSpace(req.OrderNotes),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type StatusReq struct {
	Status order.Status `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req StatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), auth.Actor(c), id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "id": id, "status": req.Status})
}
