package catalog

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/catalog"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePackageRequest creates a service package
type CreatePackageRequest struct {
	Category    string          `json:"category" binding:"required,min=1,max=100"`
	Name        string          `json:"name" binding:"required,min=1,max=100"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" binding:"required,len=3"`
}

// UpdatePackageRequest replaces the fields that are present. Price and
// Currency must be sent together.
type UpdatePackageRequest struct {
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency" binding:"omitempty,len=3"`
	Active      *bool            `json:"active"`
}

// PackageListFilter is the query of the package listing
type PackageListFilter struct {
	Category   string `form:"category"`
	ActiveOnly bool   `form:"active_only"`
}

// PackageResponse is a package as returned by the API
type PackageResponse struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPackageResponse converts a package aggregate
func ToPackageResponse(p *catalog.Package) PackageResponse {
	return PackageResponse{
		ID:          p.ID,
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    string(p.Currency),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PackageService manages the service package catalog
type PackageService struct {
	repo   catalog.PackageRepository
	logger *zap.Logger
}

// NewPackageService creates a new package service
func NewPackageService(repo catalog.PackageRepository, log *zap.Logger) *PackageService {
	return &PackageService{repo: repo, logger: log}
}

// Create adds a package to the catalog
func (s *PackageService) Create(ctx context.Context, req CreatePackageRequest) (*PackageResponse, error) {
	price, err := parsePrice(req.Price, req.Currency)
	if err != nil {
		return nil, err
	}
	pkg, err := catalog.NewPackage(req.Category, req.Name, price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		pkg.Describe(req.Description)
	}
	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("category", pkg.Category))

	resp := ToPackageResponse(pkg)
	return &resp, nil
}

// List returns the catalog ordered by category then name
func (s *PackageService) List(ctx context.Context, f PackageListFilter) ([]PackageResponse, error) {
	filter := catalog.PackageFilter{
		Filter:     shared.Filter{Page: 1, OrderBy: "category", OrderDir: "asc"},
		Category:   f.Category,
		ActiveOnly: f.ActiveOnly,
	}
	pkgs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PackageResponse, len(pkgs))
	for i := range pkgs {
		out[i] = ToPackageResponse(&pkgs[i])
	}
	return out, nil
}

// Update reprices, describes or toggles a package
func (s *PackageService) Update(ctx context.Context, id uuid.UUID, req UpdatePackageRequest) (*PackageResponse, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if (req.Price == nil) != (req.Currency == nil) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price and currency must be updated together")
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price, *req.Currency)
		if err != nil {
			return nil, err
		}
		if err := pkg.Reprice(price); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		pkg.Describe(*req.Description)
	}
	if req.Active != nil {
		pkg.SetActive(*req.Active)
	}
	if err := s.repo.Save(ctx, pkg); err != nil {
		return nil, err
	}
	resp := ToPackageResponse(pkg)
	return &resp, nil
}

func parsePrice(amount decimal.Decimal, code string) (valueobject.Money, error) {
	currency, err := valueobject.ParseCurrency(code)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoney(amount, currency)
}
