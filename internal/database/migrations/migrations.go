package migrations

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"
)

type Options struct {
	// MigrationsDir holds the golang-migrate SQL files.
	MigrationsDir string
}

func DefaultOptions() Options {
	return Options{MigrationsDir: "./migrations"}
}

// Runner applies the SQL migrations against the bun-wrapped database.
type Runner struct {
	bunDB    *bun.DB
	options  Options
	migrator *migrate.Migrate
}

func NewRunner(bunDB *bun.DB, opts Options) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) initialize() error {
	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	if _, err := os.Stat(r.options.MigrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory does not exist: %s", r.options.MigrationsDir)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", r.options.MigrationsDir),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	r.migrator = migrator
	return nil
}

// MigrateUp runs all pending migrations.
func (r *Runner) MigrateUp() error {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return err
		}
	}
	if err := r.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back all migrations.
func (r *Runner) MigrateDown() error {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return err
		}
	}
	if err := r.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func (r *Runner) Version() (uint, bool, error) {
	if r.migrator == nil {
		if err := r.initialize(); err != nil {
			return 0, false, err
		}
	}
	version, dirty, err := r.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (r *Runner) Close() error {
	if r.migrator == nil {
		return nil
	}
	sourceErr, databaseErr := r.migrator.Close()
	if sourceErr != nil {
		return fmt.Errorf("error closing migrator source: %w", sourceErr)
	}
	if databaseErr != nil {
		return fmt.Errorf("error closing migrator database: %w", databaseErr)
	}
	return nil
}
