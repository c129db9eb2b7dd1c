package handler

import (
	appidentity "github.com/agencyhub/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler serves the caller's display preferences
type PreferenceHandler struct {
	BaseHandler
	preferenceService *appidentity.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService *appidentity.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// Get godoc
// @Summary      Get preferences
// @Description  Language, text direction and display currency of the caller. Defaults apply until saved.
// @Tags         preferences
// @Produce      json
// @Success      200 {object} dto.Response{data=appidentity.PreferenceResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	resp, err := h.preferenceService.Get(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        request body appidentity.PreferenceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appidentity.PreferenceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req appidentity.PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.preferenceService.Update(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
