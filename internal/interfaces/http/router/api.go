package router

import (
	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/interfaces/http/handler"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Preference *handler.PreferenceHandler
	Exchange   *handler.ExchangeHandler
	Client     *handler.ClientHandler
	Package    *handler.PackageHandler
	Invoice    *handler.InvoiceHandler
	User       *handler.UserHandler
	Dashboard  *handler.DashboardHandler
}

// APIConfig holds the middleware the route table depends on
type APIConfig struct {
	// Authenticate resolves the caller; it runs on every non-public group
	Authenticate gin.HandlerFunc
	// AfterAuth runs right after Authenticate, e.g. span attribute injection
	AfterAuth []gin.HandlerFunc
	// LoginLimiter throttles sign-in attempts when set
	LoginLimiter gin.HandlerFunc
	// Permission configures the permission gates
	Permission middleware.PermissionConfig
}

// RegisterAPI mounts the health checks and the /api/v1 route table on engine.
// Every authenticated route is gated on a permission; admins pass every gate.
func RegisterAPI(engine *gin.Engine, h Handlers, cfg APIConfig) *Router {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(publicRoutes(h, cfg)...)
	r.Register(protectedRoutes(h, cfg)...)
	r.Setup()
	return r
}

func publicRoutes(h Handlers, cfg APIConfig) []RouteRegistrar {
	login := []gin.HandlerFunc{h.Auth.Login}
	if cfg.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{cfg.LoginLimiter}, login...)
	}
	authRoutes := NewDomainGroup("auth", "/auth").
		POST("/login", login...)

	exchangeRoutes := NewDomainGroup("exchange", "/exchange-rates").
		GET("", h.Exchange.Rates).
		GET("/convert", h.Exchange.Convert)

	systemRoutes := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{authRoutes, exchangeRoutes, systemRoutes}
}

func protectedRoutes(h Handlers, cfg APIConfig) []RouteRegistrar {
	authn := append([]gin.HandlerFunc{cfg.Authenticate}, cfg.AfterAuth...)
	perm := func(p identity.Permission) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(cfg.Permission, p)
	}
	anyPerm := func(ps ...identity.Permission) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(cfg.Permission, ps...)
	}

	// session endpoints only need a valid session
	session := NewDomainGroup("session", "").Use(authn...)
	session.POST("/auth/logout", h.Auth.Logout).
		GET("/auth/me", h.Auth.Me).
		GET("/me/preferences", h.Preference.Get).
		PUT("/me/preferences", h.Preference.Update)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(authn...).
		GET("", perm(identity.PermDashboardRead), h.Dashboard.Overview)

	readClients := anyPerm(identity.PermClientsRead, identity.PermLeadsRead, identity.PermLeadsManage)
	clients := NewDomainGroup("clients", "/clients").Use(authn...).
		GET("", readClients, h.Client.List).
		POST("", anyPerm(identity.PermClientsCreate, identity.PermLeadsManage), h.Client.Create).
		GET("/:id", readClients, h.Client.Get).
		PUT("/:id", anyPerm(identity.PermClientsUpdate, identity.PermLeadsManage), h.Client.Update).
		DELETE("/:id", perm(identity.PermClientsDelete), h.Client.Delete).
		POST("/:id/convert", perm(identity.PermLeadsManage), h.Client.Convert).
		POST("/:id/services", perm(identity.PermServicesManage), h.Client.AddService).
		PUT("/:id/services/:serviceId", perm(identity.PermServicesManage), h.Client.UpdateService)

	leads := NewDomainGroup("leads", "/leads").Use(authn...).
		GET("", anyPerm(identity.PermLeadsRead, identity.PermLeadsManage), h.Client.ListLeads).
		POST("", perm(identity.PermLeadsManage), h.Client.CreateLead)

	packages := NewDomainGroup("packages", "/packages").Use(authn...).
		GET("", anyPerm(identity.PermPackagesRead, identity.PermPackagesManage), h.Package.List).
		POST("", perm(identity.PermPackagesManage), h.Package.Create).
		PUT("/:id", perm(identity.PermPackagesManage), h.Package.Update)

	readInvoices := anyPerm(identity.PermInvoicesRead, identity.PermInvoicesManage, identity.PermFinanceRead)
	manageInvoices := perm(identity.PermInvoicesManage)
	invoices := NewDomainGroup("invoices", "/invoices").Use(authn...).
		GET("", readInvoices, h.Invoice.List).
		POST("", manageInvoices, h.Invoice.Create).
		GET("/:id", readInvoices, h.Invoice.Get).
		POST("/:id/send", manageInvoices, h.Invoice.Send).
		POST("/:id/pay", manageInvoices, h.Invoice.Pay).
		POST("/:id/cancel", manageInvoices, h.Invoice.Cancel)

	readEmployees := anyPerm(identity.PermEmployeesRead, identity.PermEmployeesManage)
	employees := NewDomainGroup("employees", "/employees").Use(authn...).
		GET("", readEmployees, h.User.List).
		POST("", perm(identity.PermEmployeesManage), h.User.Create).
		GET("/:id", readEmployees, h.User.Get).
		PUT("/:id", perm(identity.PermEmployeesManage), h.User.Update)

	return []RouteRegistrar{session, dashboard, clients, leads, packages, invoices, employees}
}
