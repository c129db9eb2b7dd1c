package catalog

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Package is a sellable service package. Services sold to clients copy the
// package's category and name as their category and sub-package labels.
type Package struct {
	shared.BaseAggregateRoot
	Category    string
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    valueobject.Currency
	Active      bool
}

// NewPackage creates an active package
func NewPackage(category, name string, price valueobject.Money) (*Package, error) {
	category = strings.TrimSpace(category)
	name = strings.TrimSpace(name)
	if category == "" || name == "" {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package category and name are required")
	}
	if len(category) > 100 || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package category and name cannot exceed 100 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Package price cannot be negative")
	}
	return &Package{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Category:          category,
		Name:              name,
		Price:             price.Amount(),
		Currency:          price.Currency(),
		Active:            true,
	}, nil
}

// Reprice changes the list price
func (p *Package) Reprice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Package price cannot be negative")
	}
	p.Price = price.Amount()
	p.Currency = price.Currency()
	p.touch()
	return nil
}

// Describe sets the description
func (p *Package) Describe(description string) {
	p.Description = strings.TrimSpace(description)
	p.touch()
}

// SetActive toggles availability for new sales
func (p *Package) SetActive(active bool) {
	p.Active = active
	p.touch()
}

func (p *Package) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
