package models

import (
	"github.com/agencyhub/backend/internal/domain/catalog"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PackageModel is the persistence model for a service package
type PackageModel struct {
	AggregateModel
	Category    string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_package_category_name,priority:1"`
	Name        string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_package_category_name,priority:2"`
	Description string               `gorm:"type:text"`
	Price       decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	Active      bool                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PackageModel) TableName() string {
	return "packages"
}

// ToDomain converts the persistence model to a domain Package
func (m *PackageModel) ToDomain() *catalog.Package {
	return &catalog.Package{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Category:          m.Category,
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		Currency:          m.Currency,
		Active:            m.Active,
	}
}

// PackageModelFromDomain creates a persistence model from a domain Package
func PackageModelFromDomain(p *catalog.Package) *PackageModel {
	m := &PackageModel{
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Active:      p.Active,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
