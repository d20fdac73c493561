package wallet

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
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
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "currency", "created_at", "updated_at"}).
		AddRow(id, userID, balance, "VND", time.Now(), time.Now())
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0))

	w, err := repo.GetOrCreateWallet(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, "VND", w.Currency)
}

func TestGetOrCreateWallet_WhenExists(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 2000000))

	w, err := repo.GetOrCreateWallet(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, int64(2000000), w.Balance)
}

func TestAddTransaction_Success_UpdateAndInsert(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	ctx := context.Background()

	mock.ExpectBegin()

	mock.ExpectQuery("SELECT id, user_id, balance, currency, created_at, updated_at(.+)FOR UPDATE").
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2000000))

	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(1500000), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(7, int64(-500000), "booking_deposit", int64(1500000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	err := repo.AddTransaction(ctx, 20, -500000, "booking_deposit")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTransaction_InsufficientBalance(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, balance, currency, created_at, updated_at(.+)FOR UPDATE").
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 100000))
	mock.ExpectRollback()

	err := repo.AddTransaction(context.Background(), 20, -500000, "booking_deposit")
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddTransaction_CreatesWalletOnFirstMovement(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, balance, currency, created_at, updated_at(.+)FOR UPDATE").
		WithArgs(30).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(30).
		WillReturnRows(walletRows(8, 30, 0))
	mock.ExpectExec("UPDATE wallets").
		WithArgs(int64(1000000), 8).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(8, int64(1000000), "topup", int64(1000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.TopUp(context.Background(), 30, 1000000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopUp_RejectsNonPositiveAmount(t *testing.T) {
	repo, _, closer := setupWalletMock(t)
	defer closer()

	require.Error(t, repo.TopUp(context.Background(), 1, 0))
	require.Error(t, repo.TopUp(context.Background(), 1, -100))
}

func TestWithdraw_RejectsNonPositiveAmount(t *testing.T) {
	repo, _, closer := setupWalletMock(t)
	defer closer()

	require.Error(t, repo.Withdraw(context.Background(), 1, 0))
	require.Error(t, repo.Withdraw(context.Background(), 1, -100))
}

func TestGetTransactions(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	mock.ExpectQuery("SELECT id, wallet_id, amount, type, balance_after, created_at").
		WithArgs(5, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "type", "balance_after", "created_at"}).
			AddRow(1, 5, int64(1000000), "topup", int64(1000000), time.Now()).
			AddRow(2, 5, int64(-500000), "booking_deposit", int64(500000), time.Now()))

	txs, err := repo.GetTransactions(context.Background(), 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "topup", txs[0].Type)
}

func TestGetTransactions_NoWallet(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM wallets WHERE user_id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	txs, err := repo.GetTransactions(context.Background(), 99, 10, 0)
	require.NoError(t, err)
	require.Empty(t, txs)
}
