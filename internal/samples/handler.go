package samples

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/sample"
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

// List is scoped by role: wholesalers see their own, retailers only approved samples.
func (h *Handler) List(c *gin.Context) {
	actor := auth.Actor(c)
	f := Filter{ProductID: util.QueryInt64(c, "product_id")}
	if v := sample.Status(c.Query("status")); v != "" {
		f.Status = &v
	}
	switch actor.Role {
	case user.RoleWholesaler:
		f.WholesalerID = &actor.ID
	case user.RoleRetailer:
		approved := sample.StatusApproved
		f.Status = &approved
	}
	items, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// saveFile stores the optional "sample" form file; "" when none was sent.
func (h *Handler) saveFile(c *gin.Context) (string, error) {
	fh, err := c.FormFile(upload.SampleFiles.Field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return h.files.Save(fh, upload.SampleFiles)
}

type createReq struct {
	ProductID   int64  `form:"product_id" json:"product_id" binding:"required,min=1"`
	Title       string `form:"title" json:"title" binding:"required,max=200"`
	Description string `form:"description" json:"description" binding:"max=2000"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}
	fileURL, err := h.saveFile(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s, err := h.repo.Create(c.Request.Context(), auth.Actor(c), CreateInput{
		ProductID:   req.ProductID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FileURL:     fileURL,
	})
	if err != nil {
		h.files.Remove(fileURL)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

type updateReq struct {
	Title       *string `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `form:"description" json:"description" binding:"omitempty,max=2000"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req updateReq
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}
	fileURL, err := h.saveFile(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	in := UpdateInput{Title: req.Title, Description: req.Description}
	if fileURL != "" {
		in.FileURL = &fileURL
	}
	s, replaced, err := h.repo.Update(c.Request.Context(), auth.Actor(c), id, in)
	if err != nil {
		h.files.Remove(fileURL)
		_ = c.Error(err)
		return
	}
	h.files.Remove(replaced)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	fileURL, err := h.repo.Delete(c.Request.Context(), auth.Actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.files.Remove(fileURL)
	c.JSON(http.StatusOK, gin.H{"message": "Sample deleted successfully", "id": id})
}

type statusReq struct {
	Status sample.Status `json:"status" binding:"required"`
}

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
	c.JSON(http.StatusOK, gin.H{"message": "Sample " + string(req.Status) + " successfully", "id": id, "status": req.Status})
}
