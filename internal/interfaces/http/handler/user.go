package handler

import (
	appidentity "github.com/agencyhub/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler manages employee accounts
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Param        search    query string false "Matches name, email or position"
// @Param        role      query string false "Role filter"
// @Param        active    query bool   false "Active filter"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appidentity.UserResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employees [get]
func (h *UserHandler) List(c *gin.Context) {
	var f appidentity.UserListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.userService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employees/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @Summary      Create employee
// @Description  Create an account. Without explicit permissions the role's default template applies.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        request body appidentity.CreateUserRequest true "Employee"
// @Success      201 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employees [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req appidentity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @Summary      Update employee
// @Description  Change profile, role, permissions, password or active flag. Deactivation ends existing sessions.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "User ID"
// @Param        request body appidentity.UpdateUserRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /employees/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appidentity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
