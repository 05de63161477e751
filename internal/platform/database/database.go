package database

import (
	"context"
	"fmt"
	"io/fs"

	"recipebox/internal/platform/config"
	"recipebox/internal/platform/database/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Connect opens the store selected by cfg.DBDriver and verifies the connection.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.DBConnStr(), cfg.DBMaxOpenConns)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Migrate applies the embedded migrations for db's dialect.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dialect, dir := goose.DialectPostgres, "postgres"
	if db.DriverName() == sqliteDriver {
		dialect, dir = goose.DialectSQLite3, "sqlite"
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	err = fn(tx)
	return err
}

func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
