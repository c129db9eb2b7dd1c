package handler

import (
	appreport "github.com/agencyhub/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the dashboard rollups
type DashboardHandler struct {
	BaseHandler
	dashboardService *appreport.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *appreport.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview godoc
// @Summary      Dashboard overview
// @Description  Client counts, revenue, upcoming renewals, unpaid invoices and lead pipeline. Finance sections need finance:read.
// @Tags         dashboard
// @Produce      json
// @Param        window_days query int    false "Renewal window in days" default(14)
// @Param        top         query int    false "Number of top clients" default(5)
// @Param        currency    query string false "Display currency override"
// @Success      200 {object} dto.Response{data=appreport.Overview}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	var q appreport.OverviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	overview, err := h.dashboardService.Overview(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}
