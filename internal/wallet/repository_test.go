package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows(id, userID int, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(id, userID, balance, time.Now(), time.Now())
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) RETURNING id, user_id, balance, created_at, updated_at")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0))

	w, err := repo.GetOrCreateWallet(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, int64(0), w.Balance)
}

func TestApplyTransaction_Credit(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(20).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE user_id = $2 AND balance + $1 >= 0 RETURNING id, user_id, balance, created_at, updated_at")).
		WithArgs(int64(10), 20).
		WillReturnRows(walletRows(7, 20, 10))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions (user_id, amount, type, event_ref, balance_after, description) VALUES ($1, $2, $3, $4, $5, $6)")).
		WithArgs(20, int64(10), TxTypeRewardedAd, "ad-1", int64(10), "Rewarded ad watched").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	w, err := repo.ApplyTransaction(ctx, 20, 10, TxTypeRewardedAd, "ad-1", "Rewarded ad watched")
	require.NoError(t, err)
	require.Equal(t, int64(10), w.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_InsufficientBalance(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(20).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Conditional update matches no row when the balance would go negative.
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE user_id = $2 AND balance + $1 >= 0")).
		WithArgs(int64(-500), 20).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectRollback()

	_, err := repo.ApplyTransaction(ctx, 20, -500, TxTypeAdjustment, "", "manual correction")
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_DuplicateEventRef(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING")).
		WithArgs(20).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE user_id = $2 AND balance + $1 >= 0")).
		WithArgs(int64(10), 20).
		WillReturnRows(walletRows(7, 20, 20))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions (user_id, amount, type, event_ref, balance_after, description)")).
		WithArgs(20, int64(10), TxTypeRewardedAd, "ad-1", int64(20), "Rewarded ad watched").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "idx_transactions_event_ref"})

	mock.ExpectRollback()

	_, err := repo.ApplyTransaction(ctx, 20, 10, TxTypeRewardedAd, "ad-1", "Rewarded ad watched")
	require.ErrorIs(t, err, ErrDuplicateEvent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumTransactions(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(120))

	sum, err := repo.SumTransactions(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(120), sum)
}

func TestGetTransactions_DefaultLimit(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery("SELECT id, user_id, amount, type, event_ref, balance_after, description, created_at").
		WithArgs(3, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "event_ref", "balance_after", "description", "created_at"}).
			AddRow(1, 3, 10, TxTypeRewardedAd, "ad-1", 10, "Rewarded ad watched", time.Now()))

	txs, err := repo.GetTransactions(context.Background(), 3, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, int64(10), txs[0].Amount)
}
