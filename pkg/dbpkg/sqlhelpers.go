package dbpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"

	// Registers the postgres:// and postgresql:// migration drivers.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Pool holds connection pool limits. Zero values keep database/sql defaults.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Setup sets up connection with database.
func Setup(driver, source string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}

	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}

	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies all pending up migrations found at migrationURL.
//
// It opens and closes its own connection, so the application pool is not touched.
func Migrate(ctx context.Context, migrationURL, source string) error {
	l := zerolog.Ctx(ctx)

	m, err := migrate.New(migrationURL, source)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			l.Warn().AnErr("source_err", srcErr).AnErr("db_err", dbErr).Msg("cannot close migration instance")
		}
	}()

	err = m.Up()
	switch {
	case err == nil:
		l.Info().Str("url", migrationURL).Msg("migrations applied")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		l.Info().Msg("no new migrations found")
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if errors.As(err, &dirtyErr) {
		return fmt.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
	}

	return fmt.Errorf("migration failed: %w", err)
}
