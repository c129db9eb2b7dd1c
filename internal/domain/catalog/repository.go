package catalog

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PackageFilter narrows package listings
type PackageFilter struct {
	shared.Filter
	Category   string
	ActiveOnly bool
}

// PackageRepository defines the interface for package persistence
type PackageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Package, error)
	FindAll(ctx context.Context, filter PackageFilter) ([]Package, error)
	Save(ctx context.Context, p *Package) error
}
