package products

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/product"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/user"
	"github.com/kumarbhakta81/Garment-platform/internal/upload"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Handler struct {
	repo  *Repo
	files *upload.Store
}

func NewHandler(repo *Repo, files *upload.Store) *Handler {
	return &Handler{repo: repo, files: files}
}

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return nil, apperr.Validation(name + " must be a non-negative number")
	}
	return &d, nil
}

func (h *Handler) page(c *gin.Context, f Filter) {
	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pages := (total + f.Limit - 1) / f.Limit
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"pagination": product.Page{
			Page:  f.Offset/f.Limit + 1,
			Limit: f.Limit,
			Total: total,
			Pages: pages,
		},
	})
}

// Public: list approved products (category_id, brand, gender, season, q, min_price, max_price)
func (h *Handler) ListPublic(c *gin.Context) {
	f := Filter{
		Public:     true,
		CategoryID: util.QueryInt64(c, "category_id"),
		Brand:      c.Query("brand"),
		Gender:     c.Query("gender"),
		Season:     c.Query("season"),
		Search:     strings.TrimSpace(c.Query("q")),
	}
	var err error
	if f.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		_ = c.Error(err)
		return
	}
	f.Limit, f.Offset = util.Pagination(c, 20, 100)
	h.page(c, f)
}

// Public: product details with variants
func (h *Handler) GetPublic(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.repo.Get(c.Request.Context(), id, true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Brands(c *gin.Context) {
	brands, err := h.repo.Brands(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

func (h *Handler) ListVariants(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	items, err := h.repo.ListVariants(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ManageList shows a wholesaler their own products in every status; admins see all.
func (h *Handler) ManageList(c *gin.Context) {
	actor := auth.Actor(c)
	var f Filter
	if !actor.IsAdmin() {
		f.WholesalerID = &actor.ID
	}
	if v := product.Status(c.Query("status")); v != "" {
		f.Status = &v
	}
	f.Search = strings.TrimSpace(c.Query("q"))
	f.Limit, f.Offset = util.Pagination(c, 20, 100)
	h.page(c, f)
}

func (h *Handler) Analytics(c *gin.Context) {
	actor := auth.Actor(c)
	var owner *int64
	if actor.Role == user.RoleWholesaler {
		owner = &actor.ID
	}
	a, err := h.repo.Analytics(c.Request.Context(), owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type VariantReq struct {
	Size          string           `json:"size" binding:"required,max=10"`
	Color         string           `json:"color" binding:"required,max=30"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity int              `json:"stock_quantity" binding:"min=0"`
	SKU           string           `json:"sku" binding:"max=50"`
}

type CreateProductReq struct {
	CategoryID  *int64          `json:"category_id" binding:"omitempty,min=1"`
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Brand       string          `json:"brand" binding:"max=100"`
	Material    string          `json:"material" binding:"max=100"`
	Season      string          `json:"season" binding:"max=30"`
	Gender      string          `json:"gender" binding:"max=20"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	Images      []string        `json:"images" binding:"max=5"`
	Variants    []VariantReq    `json:"variants" binding:"dive"`
}

func positive(d decimal.Decimal, field string) error {
	if !d.IsPositive() {
		return apperr.Validation(field + " must be greater than 0")
	}
	return nil
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := positive(req.Price, "price"); err != nil {
		_ = c.Error(err)
		return
	}

	in := CreateInput{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Brand:       strings.TrimSpace(req.Brand),
		Material:    req.Material,
		Season:      req.Season,
		Gender:      req.Gender,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Images:      req.Images,
	}
	for _, v := range req.Variants {
		price := req.Price
		if v.Price != nil {
			if err := positive(*v.Price, "variant price"); err != nil {
				_ = c.Error(err)
				return
			}
			price = *v.Price
		}
		in.Variants = append(in.Variants, VariantInput{
			Size:          v.Size,
			Color:         v.Color,
			Price:         price,
			StockQuantity: v.StockQuantity,
			SKU:           v.SKU,
		})
	}

	p, err := h.repo.Create(c.Request.Context(), auth.Actor(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type UpdateProductReq struct {
	CategoryID  *int64           `json:"category_id" binding:"omitempty,min=1"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Brand       *string          `json:"brand" binding:"omitempty,max=100"`
	Material    *string          `json:"material" binding:"omitempty,max=100"`
	Season      *string          `json:"season" binding:"omitempty,max=30"`
	Gender      *string          `json:"gender" binding:"omitempty,max=20"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=0"`
	Images      *[]string        `json:"images" binding:"omitempty,max=5"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Price != nil {
		if err := positive(*req.Price, "price"); err != nil {
			_ = c.Error(err)
			return
		}
	}
	p, err := h.repo.Update(c.Request.Context(), auth.Actor(c), id, UpdateInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Material:    req.Material,
		Season:      req.Season,
		Gender:      req.Gender,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Images:      req.Images,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), auth.Actor(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "id": id})
}

type statusReq struct {
	Status product.Status `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateStatus: admin moderation of a pending product
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product status updated", "id": id, "status": req.Status})
}

// UploadImages stores multipart "images" files and appends their paths.
func (h *Handler) UploadImages(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(apperr.Validation("multipart form with images is required"))
		return
	}
	files := form.File[upload.ProductImages.Field]
	if len(files) == 0 {
		_ = c.Error(apperr.Validation("at least one image is required"))
		return
	}
	paths, err := h.files.SaveAll(files, upload.ProductImages)
	if err != nil {
		_ = c.Error(err)
		return
	}
	images, err := h.repo.AppendImages(c.Request.Context(), auth.Actor(c), id, paths)
	if err != nil {
		h.files.Remove(paths...)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images, "uploaded": paths})
}

func (h *Handler) CreateVariant(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req VariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	in := VariantInput{Size: req.Size, Color: req.Color, StockQuantity: req.StockQuantity, SKU: req.SKU}
	if req.Price != nil {
		if err := positive(*req.Price, "price"); err != nil {
			_ = c.Error(err)
			return
		}
		in.Price = *req.Price
	}
	v, err := h.repo.CreateVariant(c.Request.Context(), auth.Actor(c), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

type updateVariantReq struct {
	Size          *string          `json:"size" binding:"omitempty,min=1,max=10"`
	Color         *string          `json:"color" binding:"omitempty,min=1,max=30"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	SKU           *string          `json:"sku" binding:"omitempty,min=1,max=50"`
}

func (h *Handler) UpdateVariant(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.Price != nil {
		if err := positive(*req.Price, "price"); err != nil {
			_ = c.Error(err)
			return
		}
	}
	v, err := h.repo.UpdateVariant(c.Request.Context(), auth.Actor(c), id, VariantUpdate{
		Size:          req.Size,
		Color:         req.Color,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVariant(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.DeleteVariant(c.Request.Context(), auth.Actor(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted", "id": id})
}
