package persistence

import (
	"context"
	"testing"

	"github.com/agencyhub/backend/internal/domain/catalog"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPackageRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPackageRepository(db)
	ctx := context.Background()

	newPkg := func(category, name string, price int64) *catalog.Package {
		money, err := valueobject.NewMoney(decimal.NewFromInt(price), valueobject.USD)
		require.NoError(t, err)
		p, err := catalog.NewPackage(category, name, money)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))
		return p
	}

	newPkg("website", "Landing", 900)
	gold := newPkg("social_media", "Gold", 1200)
	newPkg("social_media", "Basic", 400)

	gold.SetActive(false)
	require.NoError(t, repo.Save(ctx, gold))

	t.Run("orders by category then name", func(t *testing.T) {
		pkgs, err := repo.FindAll(ctx, catalog.PackageFilter{Filter: shared.Filter{OrderBy: "category", OrderDir: "asc"}})
		require.NoError(t, err)
		require.Len(t, pkgs, 3)
		assert.Equal(t, "Basic", pkgs[0].Name)
		assert.Equal(t, "Gold", pkgs[1].Name)
		assert.Equal(t, "Landing", pkgs[2].Name)
	})

	t.Run("filters active packages of a category", func(t *testing.T) {
		pkgs, err := repo.FindAll(ctx, catalog.PackageFilter{Category: "social_media", ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, pkgs, 1)
		assert.Equal(t, "Basic", pkgs[0].Name)
	})

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, gold.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
		assert.True(t, decimal.NewFromInt(1200).Equal(found.Price))

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
