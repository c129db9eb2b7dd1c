package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencyhub/backend/internal/domain/catalog"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPackageRepository implements PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds packages matching the filter
func (r *GormPackageRepository) FindAll(ctx context.Context, filter catalog.PackageFilter) ([]catalog.Package, error) {
	query := r.db.WithContext(ctx).Model(&models.PackageModel{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	sortField := ValidateSortField(filter.OrderBy, PackageSortFields, "category")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir)).Order("name ASC")

	var packageModels []models.PackageModel
	if err := query.Find(&packageModels).Error; err != nil {
		return nil, err
	}

	pkgs := make([]catalog.Package, len(packageModels))
	for i := range packageModels {
		pkgs[i] = *packageModels[i].ToDomain()
	}
	return pkgs, nil
}

// Save creates or updates a package
func (r *GormPackageRepository) Save(ctx context.Context, p *catalog.Package) error {
	return r.db.WithContext(ctx).Save(models.PackageModelFromDomain(p)).Error
}
