//go:build integration

package accountrepo_test

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/slavapak/ledger/internal/accountrepo"
	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/internal/integrationtest"
	"github.com/slavapak/ledger/pkg/dbpkg"
)

var source string

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	src, terminate, err := integrationtest.StartPostgres(context.Background())
	if err != nil {
		log.Println("cannot start postgres:", err)
		return 1
	}
	defer terminate()

	source = src

	return m.Run()
}

func TestCreateAndGet(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, 100)
	require.NoError(t, err)
	require.Positive(t, created.ID)
	require.Equal(t, int64(100), created.Balance)
	require.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(created, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Errorf("Get(%d) mismatch (-want +got):\n%s", created.ID, diff)
	}

	second, err := repo.Create(ctx, 0)
	require.NoError(t, err)
	require.Greater(t, second.ID, created.ID)
}

func TestGetNotFound(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)

	_, err := repo.Get(context.Background(), 999)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLockForUpdate(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)
	tm := dbpkg.NewTxManager(db, sql.LevelRepeatableRead)

	a := integrationtest.SeedAccount(t, db, 100)
	b := integrationtest.SeedAccount(t, db, 200)

	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		balances, err := repo.LockForUpdate(ctx, b, a, 999)
		if err != nil {
			return err
		}

		want := map[int64]int64{a: 100, b: 200}
		if diff := cmp.Diff(want, balances); diff != "" {
			t.Errorf("LockForUpdate mismatch (-want +got):\n%s", diff)
		}

		if err := repo.SetBalance(ctx, a, 75); err != nil {
			return err
		}

		return repo.SetBalance(ctx, b, 225)
	})
	require.NoError(t, err)

	require.Equal(t, int64(75), integrationtest.Balance(t, db, a))
	require.Equal(t, int64(225), integrationtest.Balance(t, db, b))
}

func TestLockForUpdateConflict(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)
	tm := dbpkg.NewTxManager(db, sql.LevelRepeatableRead)

	a := integrationtest.SeedAccount(t, db, 100)
	b := integrationtest.SeedAccount(t, db, 200)

	holder, err := db.Begin()
	require.NoError(t, err)

	defer func() {
		require.NoError(t, holder.Rollback())
	}()

	_, err = holder.Exec(`UPDATE accounts SET balance = balance WHERE id = $1`, a)
	require.NoError(t, err)

	start := time.Now()

	err = tm.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, a, b)
		return err
	})
	require.ErrorIs(t, err, domain.ErrTransferConflict)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestOutsideTx(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)
	ctx := context.Background()

	a := integrationtest.SeedAccount(t, db, 100)

	_, err := repo.LockForUpdate(ctx, a)
	require.ErrorIs(t, err, dbpkg.ErrNoTx)

	err = repo.SetBalance(ctx, a, 1)
	require.ErrorIs(t, err, dbpkg.ErrNoTx)

	require.Equal(t, int64(100), integrationtest.Balance(t, db, a))
}

func TestSetBalanceNotFound(t *testing.T) {
	db := integrationtest.SetupDB(t, source)
	repo := accountrepo.NewRepoPGS(db)
	tm := dbpkg.NewTxManager(db, sql.LevelRepeatableRead)

	err := tm.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.SetBalance(ctx, 999, 1)
	})
	require.True(t, errors.Is(err, domain.ErrAccountNotFound), "got %v", err)
}
