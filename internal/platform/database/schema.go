package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ApplySchema brings the database up to the embedded schema. Calling it on an
// up-to-date database is a no-op.
func ApplySchema(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(schemaFS, "schema")
	if err != nil {
		return fmt.Errorf("failed to open embedded schema: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create schema driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("failed to create schema instance: %w", err)
	}
	// Closing m would also close db through the driver, so only the source is released.
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close schema source", zap.Error(err))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("Schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Schema applied", zap.Uint("version", version))
	return nil
}
