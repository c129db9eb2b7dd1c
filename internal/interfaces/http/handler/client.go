package handler

import (
	"net/http"

	appclient "github.com/agencyhub/backend/internal/application/client"
	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler serves confirmed clients and leads. Both live in the same
// table; the caller's permissions decide which kind it may see or change.
type ClientHandler struct {
	BaseHandler
	clientService *appclient.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appclient.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List godoc
// @Summary      List clients
// @Description  Paginated client listing with search and kind, status, stage and owner filters
// @Tags         clients
// @Produce      json
// @Param        search             query string false "Matches name, company or email"
// @Param        kind               query string false "lead or confirmed"
// @Param        status             query string false "active, paused, finished or archived"
// @Param        stage              query string false "Lead pipeline stage"
// @Param        account_manager_id query string false "Account manager ID"
// @Param        sales_owner_id     query string false "Sales owner ID"
// @Param        page               query int    false "Page number" default(1)
// @Param        page_size          query int    false "Page size" default(20)
// @Param        order_by           query string false "name, created_at, updated_at or status"
// @Param        order_dir          query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]appclient.ClientResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var f appclient.ClientListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	// lead-only callers never see confirmed clients
	if !identity.HasPermission(p, identity.PermClientsRead) {
		f.Kind = string(client.KindLead)
	}
	h.list(c, f)
}

// ListLeads godoc
// @Summary      List leads
// @Description  Paginated listing of clients of kind lead
// @Tags         leads
// @Produce      json
// @Param        search    query string false "Matches name, company or email"
// @Param        stage     query string false "Lead pipeline stage"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appclient.ClientResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [get]
func (h *ClientHandler) ListLeads(c *gin.Context) {
	var f appclient.ClientListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	f.Kind = string(client.KindLead)
	h.list(c, f)
}

func (h *ClientHandler) list(c *gin.Context, f appclient.ClientListFilter) {
	page, err := h.clientService.ListClients(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get client
// @Description  A client with its services and derived status
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, ok := h.load(c, id, identity.PermClientsRead, identity.PermLeadsRead, identity.PermLeadsManage)
	if !ok {
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @Summary      Create client
// @Description  Create a confirmed client. Sending kind=lead creates a lead instead.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body appclient.CreateClientRequest true "Client"
// @Success      201 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req appclient.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Kind == "" {
		req.Kind = string(client.KindConfirmed)
	}
	h.create(c, req)
}

// CreateLead godoc
// @Summary      Create lead
// @Description  Create a lead at stage new
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body appclient.CreateClientRequest true "Lead"
// @Success      201 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [post]
func (h *ClientHandler) CreateLead(c *gin.Context) {
	var req appclient.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.Kind = string(client.KindLead)
	h.create(c, req)
}

func (h *ClientHandler) create(c *gin.Context, req appclient.CreateClientRequest) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if !h.mayWrite(p, client.Kind(req.Kind), identity.PermClientsCreate) {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to perform this action")
		return
	}
	resp, err := h.clientService.AddClient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @Summary      Update client
// @Description  Replace the fields present in the body. Services are not touched.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Client ID"
// @Param        request body appclient.UpdateClientRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appclient.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	current, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	allowed := h.mayWrite(p, client.Kind(current.Kind), identity.PermClientsUpdate)
	if req.Kind != nil {
		// changing the kind needs write access to both kinds
		allowed = allowed && h.mayWrite(p, client.Kind(*req.Kind), identity.PermClientsUpdate)
	}
	if !allowed {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to perform this action")
		return
	}

	resp, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete client
// @Description  Remove a client together with its services
// @Tags         clients
// @Param        id path string true "Client ID"
// @Success      204
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddService godoc
// @Summary      Add service to client
// @Description  Append a service. The client's status is re-derived from its services.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Client ID"
// @Param        request body appclient.AddServiceRequest true "Service"
// @Success      201 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/services [post]
func (h *ClientHandler) AddService(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appclient.AddServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.clientService.AddServiceToClient(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateService godoc
// @Summary      Update client service
// @Description  Replace the fields present in the body on one service. The client's status is re-derived.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id        path string                          true "Client ID"
// @Param        serviceId path string                          true "Service ID"
// @Param        request   body appclient.UpdateServiceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/services/{serviceId} [put]
func (h *ClientHandler) UpdateService(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := h.pathUUID(c, "serviceId")
	if !ok {
		return
	}
	var req appclient.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.clientService.UpdateService(c.Request.Context(), id, serviceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Convert godoc
// @Summary      Convert lead
// @Description  Turn a lead into a confirmed client; the stage becomes won
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID"
// @Success      200 {object} dto.Response{data=appclient.ClientResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /clients/{id}/convert [post]
func (h *ClientHandler) Convert(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.clientService.ConvertLead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// load fetches a client the caller may read. Confirmed clients need
// clients:read; leads are also visible with any leads permission.
func (h *ClientHandler) load(c *gin.Context, id uuid.UUID, clientPerm identity.Permission, leadPerms ...identity.Permission) (*appclient.ClientResponse, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	resp, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	allowed := identity.HasPermission(p, clientPerm)
	if !allowed && resp.Kind == string(client.KindLead) {
		allowed = identity.HasAnyPermission(p, leadPerms...)
	}
	if !allowed {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "You do not have permission to perform this action")
		return nil, false
	}
	return resp, true
}

// mayWrite applies the same split to writes: leads:manage covers leads
func (h *ClientHandler) mayWrite(p *identity.Principal, kind client.Kind, clientPerm identity.Permission) bool {
	if identity.HasPermission(p, clientPerm) {
		return true
	}
	return kind == client.KindLead && identity.HasPermission(p, identity.PermLeadsManage)
}
