package handler

import (
	appcatalog "github.com/agencyhub/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// PackageHandler serves the service package catalog
type PackageHandler struct {
	BaseHandler
	packageService *appcatalog.PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packageService *appcatalog.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// List godoc
// @Summary      List packages
// @Description  Catalog packages ordered by category and name
// @Tags         packages
// @Produce      json
// @Param        category    query string false "Category filter"
// @Param        active_only query bool   false "Only active packages"
// @Success      200 {object} dto.Response{data=[]appcatalog.PackageResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	var f appcatalog.PackageListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	items, err := h.packageService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Create godoc
// @Summary      Create package
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.CreatePackageRequest true "Package"
// @Success      201 {object} dto.Response{data=appcatalog.PackageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	var req appcatalog.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.packageService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @Summary      Update package
// @Description  Change description, price or active flag. Price and currency go together.
// @Tags         packages
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Package ID"
// @Param        request body appcatalog.UpdatePackageRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appcatalog.PackageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /packages/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.packageService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
