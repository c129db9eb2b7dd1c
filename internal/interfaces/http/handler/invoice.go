package handler

import (
	"context"

	appinvoice "github.com/agencyhub/backend/internal/application/invoice"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler serves invoices and their lifecycle transitions
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoice.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *appinvoice.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        client_id query string false "Client ID"
// @Param        status    query string false "draft, sent, paid or cancelled"
// @Param        search    query string false "Matches number or notes"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinvoice.InvoiceResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var f appinvoice.InvoiceListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.invoiceService.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.withID(c, h.invoiceService.Get)
}

// Create godoc
// @Summary      Create invoice
// @Description  Issue a draft invoice for a client, optionally tied to one of its services
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appinvoice.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appinvoice.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Send godoc
// @Summary      Send invoice
// @Description  Move a draft invoice to sent
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.withID(c, h.invoiceService.Send)
}

// Pay godoc
// @Summary      Mark invoice paid
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	h.withID(c, h.invoiceService.MarkPaid)
}

// Cancel godoc
// @Summary      Cancel invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response{data=appinvoice.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.withID(c, h.invoiceService.Cancel)
}

func (h *InvoiceHandler) withID(c *gin.Context, op func(context.Context, uuid.UUID) (*appinvoice.InvoiceResponse, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
