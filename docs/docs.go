// Package docs serves the OpenAPI description of the agency dashboard API.
// Regenerate with `swag init -g cmd/server/main.go --v3.1` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "/api/v1"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
            "SessionCookie": {"type": "apiKey", "in": "cookie", "name": "session"}
        }
    },
    "security": [{"BearerAuth": []}, {"SessionCookie": []}],
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in", "security": []}},
        "/auth/logout": {"post": {"tags": ["auth"], "summary": "Sign out"}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user with visible navigation"}},
        "/me/preferences": {
            "get": {"tags": ["preferences"], "summary": "Get preferences"},
            "put": {"tags": ["preferences"], "summary": "Update preferences"}
        },
        "/exchange-rates": {"get": {"tags": ["exchange-rates"], "summary": "Exchange rates", "security": []}},
        "/exchange-rates/convert": {"get": {"tags": ["exchange-rates"], "summary": "Convert an amount", "security": []}},
        "/dashboard": {"get": {"tags": ["dashboard"], "summary": "Dashboard overview"}},
        "/clients": {
            "get": {"tags": ["clients"], "summary": "List clients"},
            "post": {"tags": ["clients"], "summary": "Create client"}
        },
        "/clients/{id}": {
            "get": {"tags": ["clients"], "summary": "Get client"},
            "put": {"tags": ["clients"], "summary": "Update client"},
            "delete": {"tags": ["clients"], "summary": "Delete client"}
        },
        "/clients/{id}/convert": {"post": {"tags": ["leads"], "summary": "Convert lead"}},
        "/clients/{id}/services": {"post": {"tags": ["clients"], "summary": "Add service"}},
        "/clients/{id}/services/{serviceId}": {"put": {"tags": ["clients"], "summary": "Update service"}},
        "/leads": {
            "get": {"tags": ["leads"], "summary": "List leads"},
            "post": {"tags": ["leads"], "summary": "Create lead"}
        },
        "/packages": {
            "get": {"tags": ["packages"], "summary": "List packages"},
            "post": {"tags": ["packages"], "summary": "Create package"}
        },
        "/packages/{id}": {"put": {"tags": ["packages"], "summary": "Update package"}},
        "/invoices": {
            "get": {"tags": ["invoices"], "summary": "List invoices"},
            "post": {"tags": ["invoices"], "summary": "Create invoice"}
        },
        "/invoices/{id}": {"get": {"tags": ["invoices"], "summary": "Get invoice"}},
        "/invoices/{id}/send": {"post": {"tags": ["invoices"], "summary": "Send invoice"}},
        "/invoices/{id}/pay": {"post": {"tags": ["invoices"], "summary": "Mark invoice paid"}},
        "/invoices/{id}/cancel": {"post": {"tags": ["invoices"], "summary": "Cancel invoice"}},
        "/employees": {
            "get": {"tags": ["employees"], "summary": "List employees"},
            "post": {"tags": ["employees"], "summary": "Create employee"}
        },
        "/employees/{id}": {
            "get": {"tags": ["employees"], "summary": "Get employee"},
            "put": {"tags": ["employees"], "summary": "Update employee"}
        },
        "/system/info": {"get": {"tags": ["system"], "summary": "Get system information", "security": []}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Agency Dashboard API",
	Description:      "Clients, services, invoices and dashboard rollups for a services agency.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
