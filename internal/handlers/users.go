package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary     List user accounts
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Param       role      query string false "user, admin or super_admin"
// @Param       approved  query bool   false "Approval state"
// @Param       search    query string false "Case-insensitive substring of name, nickname or email"
// @Param       page      query int    false "1-based page" default(1)
// @Param       page_size query int    false "Rows per page, at most 100" default(20)
// @Success     200 {object} models.ListResult
// @Failure     400 {object} models.ListResult
// @Router      /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var (
		filter models.UserFilter
		pg     Pagination
	)
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "ListUsers", err)
		return
	}
	if err := c.ShouldBindQuery(&pg); err != nil {
		badRequest(c, "ListUsers", err)
		return
	}
	page, size := pg.normalized()

	res, err := h.users.ListUsers(c.Request.Context(), filter, page, size)
	if err != nil {
		fail(c, err, true)
		return
	}
	okList(c, res.Data, res.TotalCount)
}

// Update godoc
// @Summary     Change a user's role or approval
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       user_id path string true "User account ID (UUID)"
// @Param       request body models.UserPatch true "Fields to change"
// @Success     200 {object} models.Result
// @Failure     400 {object} models.Result
// @Failure     404 {object} models.Result
// @Router      /users/{user_id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "user_id")
	if !valid {
		return
	}
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "UpdateUser", err)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		fail(c, err, false)
		return
	}
	ok(c, http.StatusOK, user)
}
