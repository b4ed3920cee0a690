package util

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kumarbhakta81/Garment-platform/internal/apperr"
)

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// QueryInt64 returns nil when the query parameter is absent or not a positive integer.
func QueryInt64(c *gin.Context, name string) *int64 {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return nil
	}
	return &n
}

// QueryBool returns nil when the parameter is absent.
func QueryBool(c *gin.Context, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b := v == "true" || v == "1"
	return &b
}

// maxPage keeps (page-1)*limit far from overflowing.
const maxPage = 1_000_000

// Pagination reads limit/offset style paging with a default and an upper bound.
// page is clamped to maxPage.
func Pagination(c *gin.Context, defLimit, maxLimit int) (limit, offset int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 && c.Query("offset") == "" {
		offset = (min(page, maxPage) - 1) * limit
	}
	return limit, offset
}
