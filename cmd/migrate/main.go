package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/migration"
	"github.com/agencyhub/backend/internal/infrastructure/persistence"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const adminPasswordEnv = "AGENCY_ADMIN_PASSWORD"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	defer zap.ReplaceGlobals(log)()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("invalid migrations path", zap.Error(err))
	}

	if err := run(args, absPath, log); err != nil {
		log.Fatal("migrate command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(args []string, migrationsPath string, log *zap.Logger) error {
	command := args[0]

	// Commands that only touch the filesystem
	switch command {
	case "create":
		if len(args) < 2 {
			return errors.New("usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			return err
		}
		log.Info("migration created", zap.Uint("version", mf.Version), zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	case "list":
		files, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("  %06d  %s\n", f.Version, f.Name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if command == "create-admin" {
		db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormlogger.Discard)
		if err != nil {
			return err
		}
		defer db.Close()
		return createAdmin(args[1:], db, log)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(sqlDB, migrationsPath, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		if len(args) < 2 {
			return errors.New("usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		if len(args) < 2 {
			return errors.New("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// createAdmin creates the first administrator. The password is read from
// the environment so it never shows up in shell history.
func createAdmin(args []string, db *persistence.Database, log *zap.Logger) error {
	if len(args) < 2 {
		return errors.New("usage: migrate create-admin <email> <name>")
	}
	password := os.Getenv(adminPasswordEnv)
	if password == "" {
		return fmt.Errorf("%s is not set", adminPasswordEnv)
	}

	ctx := context.Background()
	repo := persistence.NewGormUserRepository(db.DB)
	exists, err := repo.ExistsByEmail(ctx, args[0])
	if err != nil {
		return err
	}
	if exists {
		log.Info("admin already exists", zap.String("email", args[0]))
		return nil
	}

	user, err := identity.NewUser(args[0], args[1], password, identity.RoleAdmin)
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	log.Info("admin created", zap.String("user_id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

func printUsage() {
	fmt.Println(`Agency dashboard schema tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                          Apply all pending migrations
  down                        Roll back all migrations
  step <n>                    Apply n migrations (negative rolls back)
  version                     Show the applied schema version
  force <version>             Mark a version as applied (clears a dirty state)
  create <name>               Write the next sequential migration pair
  list                        List migration files
  create-admin <email> <name> Create an administrator (password from AGENCY_ADMIN_PASSWORD)

Flags:
  -path string       Path to migrations directory (default: migrations)
  -log-level string  Log level: debug, info, warn, error (default: info)`)
}
