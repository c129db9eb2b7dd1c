// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel
// - client.go: clients and their ordered services
// - invoice.go: invoices
// - identity.go: users and display preferences
// - catalog.go: service packages
package models
