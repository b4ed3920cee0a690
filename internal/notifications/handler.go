package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/domain/notification"
	"github.com/kumarbhakta81/Garment-platform/internal/util"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func filterFrom(c *gin.Context, defLimit, maxLimit int) Filter {
	var f Filter
	f.Limit, f.Offset = util.Pagination(c, defLimit, maxLimit)
	f.IsRead = util.QueryBool(c, "is_read")
	if v := c.Query("type"); v != "" {
		t := notification.Type(v)
		f.Type = &t
	}
	return f
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), auth.Actor(c).ID, filterFrom(c, 50, 200))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.repo.ListAll(c.Request.Context(), filterFrom(c, 100, 500))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.repo.Counts(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.MarkRead(c.Request.Context(), auth.Actor(c).ID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "id": id})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.repo.MarkAllRead(c.Request.Context(), auth.Actor(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := util.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), auth.Actor(c).ID, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted", "id": id})
}
