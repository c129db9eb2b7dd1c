package persistence

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/invoice"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/agencyhub/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable PostgreSQL container and applies the
// project migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("agency_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for range 5 {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found")
	return ""
}

func TestPostgres_ClientRoundTrip(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormClientRepository(db)

	c := newRepoClient(t, "nile", client.KindConfirmed)
	addRepoService(t, c, "social", client.ServiceInProgress, client.SocialDeliverables{PostsDone: 4, PostsTotal: 12})
	addRepoService(t, c, "website", client.ServiceCompleted, client.WebsiteDeliverables{Design: true, Development: true, Content: true, Launch: true})
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "nile", got.Name)
	assert.Equal(t, client.KindConfirmed, got.Kind)
	require.Len(t, got.Services, 2)

	byCategory := map[string]client.Service{}
	for _, s := range got.Services {
		byCategory[s.Category] = s
	}
	social, ok := byCategory["social"].Deliverables.(client.SocialDeliverables)
	require.True(t, ok, "deliverables should decode to their concrete kind")
	assert.Equal(t, 4, social.PostsDone)
	assert.True(t, byCategory["website"].Price.Equal(decimal.NewFromInt(1500)))

	// Saving again replaces the service rows
	got.Services = got.Services[:1]
	require.NoError(t, repo.Save(ctx, got))
	reloaded, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Services, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostgres_ClientFilters(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormClientRepository(db)

	for _, name := range []string{"alpha", "beta"} {
		require.NoError(t, repo.Save(ctx, newRepoClient(t, name, client.KindConfirmed)))
	}
	require.NoError(t, repo.Save(ctx, newRepoClient(t, "gamma", client.KindLead)))

	leads, err := repo.FindAll(ctx, client.ClientFilter{Kind: client.KindLead})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "gamma", leads[0].Name)

	total, err := repo.Count(ctx, client.ClientFilter{Kind: client.KindConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	page, err := repo.FindAll(ctx, client.ClientFilter{Filter: shared.Filter{Page: 1, PageSize: 2, OrderBy: "name"}})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestPostgres_InvoicesAndPreferences(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	clients := NewGormClientRepository(db)
	c := newRepoClient(t, "delta", client.KindConfirmed)
	require.NoError(t, clients.Save(ctx, c))

	invoices := NewGormInvoiceRepository(db)
	amount, err := valueobject.NewMoney(decimal.NewFromInt(3750), valueobject.SAR)
	require.NoError(t, err)
	issued := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	inv, err := invoice.NewInvoice("INV-0001", c.ID, amount, issued, issued.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.NoError(t, invoices.Save(ctx, inv))

	require.NoError(t, inv.Send())
	require.NoError(t, invoices.Save(ctx, inv))

	found, err := invoices.FindByNumber(ctx, "INV-0001")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, found.Status)
	m, err := found.Money()
	require.NoError(t, err)
	assert.Equal(t, valueobject.SAR, m.Currency())

	sent, err := invoices.Count(ctx, invoice.InvoiceFilter{ClientID: &c.ID, Status: invoice.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent)

	users := NewGormUserRepository(db)
	u, err := identity.NewUser("finance@agency.test", "Finance", "correct horse battery", identity.RoleManager)
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, u))

	exists, err := users.ExistsByEmail(ctx, "finance@agency.test")
	require.NoError(t, err)
	assert.True(t, exists)

	prefs := NewGormPreferenceRepository(db)
	_, err = prefs.Find(ctx, u.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	p := identity.DefaultPreference(u.ID)
	require.NoError(t, prefs.Save(ctx, &p))
	p.Language = identity.LanguageEnglish
	p.Currency = valueobject.EGP
	require.NoError(t, prefs.Save(ctx, &p))

	stored, err := prefs.Find(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.LanguageEnglish, stored.Language)
	assert.Equal(t, valueobject.EGP, stored.Currency)
}
