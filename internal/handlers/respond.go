package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
)

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, models.Result{Data: data})
}

func okList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, models.ListResult{Data: data, TotalCount: total})
}

// fail writes the envelope with a null data field. A list endpoint passes
// list=true so the shape still carries totalCount.
func fail(c *gin.Context, err error, list bool) {
	_ = c.Error(err)
	msg := err.Error()
	status := apperr.HTTPStatus(err)
	if list {
		c.JSON(status, models.ListResult{Error: &msg})
		return
	}
	c.JSON(status, models.Result{Error: &msg})
}

func badRequest(c *gin.Context, op string, err error) {
	fail(c, apperr.Validation(op, err), false)
}

// pathID reads a uuid path parameter.
func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(c, apperr.Validationf("path", "invalid %s: %q", name, raw), false)
		return "", false
	}
	return id.String(), true
}

// Pagination is the common listing query string.
type Pagination struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

const defaultPageSize = 20

func (p Pagination) normalized() (int, int) {
	page, size := p.Page, p.PageSize
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = defaultPageSize
	}
	return page, size
}
