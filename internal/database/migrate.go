package database

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tasktrack/migrations"
	"github.com/jackc/pgx/v5/stdlib"
)

// Migrate brings the schema up to date using the pool's connection settings.
func (db *DB) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := migrations.Migrate(ctx, sqlDB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	db.logger.Info("database migrations applied")
	return nil
}
