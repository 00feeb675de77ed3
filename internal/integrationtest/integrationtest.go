// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/slavapak/ledger/cmd/httpserver"
	"github.com/slavapak/ledger/internal/middleware"
	"github.com/slavapak/ledger/pkg/configpkg"
	"github.com/slavapak/ledger/pkg/dbpkg"

	// Registers the postgres database/sql driver.
	_ "github.com/lib/pq"
)

// DefaultBalance is the initial balance of accounts created through SetupServer.
const DefaultBalance = 100

// MigrationURL returns the file url of the repository migrations.
func MigrationURL() string {
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "db", "migration")

	return "file://" + filepath.ToSlash(dir)
}

// StartPostgres starts a disposable PostgreSQL container, applies the
// migrations and returns the connection string with a terminate function.
func StartPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}

	terminate := func() {
		_ = container.Terminate(context.Background())
	}

	source, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("postgres connection string: %w", err)
	}

	if err := dbpkg.Migrate(ctx, MigrationURL(), source); err != nil {
		terminate()
		return "", nil, err
	}

	return source, terminate, nil
}

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T, source string) *httpserver.Server {
	t.Helper()

	config := configpkg.Config{
		DBDriver:       "postgres",
		DBSource:       source,
		DefaultBalance: DefaultBalance,
		Environement:   "test",
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, source)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush removes all rows and resets the id sequences.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE TABLE transfers, accounts RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup("postgres", source, dbpkg.Pool{MaxOpenConns: 10})
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	Flush(t, db)

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Errorf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SeedAccount inserts an account with the given balance and returns its id.
func SeedAccount(t *testing.T, db *sql.DB, balance int64) int64 {
	t.Helper()

	var id int64
	if err := db.QueryRow(`INSERT INTO accounts (balance) VALUES ($1) RETURNING id`, balance).Scan(&id); err != nil {
		t.Fatalf("SeedAccount(%d) failed: %v", balance, err)
	}

	return id
}

// Balance returns the stored balance of the account.
func Balance(t *testing.T, db *sql.DB, id int64) int64 {
	t.Helper()

	var balance int64
	if err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, id).Scan(&balance); err != nil {
		t.Fatalf("Balance(%d) failed: %v", id, err)
	}

	return balance
}

// CountTransfers returns the number of transfer records.
func CountTransfers(t *testing.T, db *sql.DB) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM transfers`).Scan(&n); err != nil {
		t.Fatalf("CountTransfers failed: %v", err)
	}

	return n
}
