package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store/drivers/sqlite"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

var t0 = time.Date(2026, 3, 14, 9, 26, 53, 589793200, time.UTC)

func seedUser(t *testing.T, st store.Store, id, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           id,
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	u := seedUser(t, st, "u1", "ada@example.com")

	got, err := st.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, u, got)

	err = st.Users().CreateUser(ctx, domain.User{ID: "u2", Email: "ada@example.com", CreatedAt: t0, UpdatedAt: t0})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().GetUserByID(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	phone := "+61 400 000 000"
	later := t0.Add(time.Hour)
	require.NoError(t, st.Users().UpdateProfile(ctx, "u1", "Augusta", "King", &phone, later))

	got, err = st.Users().GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Augusta", got.FirstName)
	require.Equal(t, &phone, got.PhoneNumber)
	require.Equal(t, later, got.UpdatedAt)

	require.ErrorIs(t, st.Users().UpdatePasswordHash(ctx, "nope", "x", later), store.ErrNotFound)
}

func TestSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	seedUser(t, st, "u1", "ada@example.com")
	seedUser(t, st, "u2", "grace@example.com")

	newSession := func(user, hash string, lastActive time.Time) int64 {
		id, err := st.Sessions().CreateSession(ctx, domain.Session{
			UserID:           user,
			RefreshHash:      hash,
			DeviceName:       "iPhone",
			IPAddress:        "10.0.0.1",
			LastActive:       lastActive,
			RefreshExpiresAt: t0.Add(24 * time.Hour),
			CreatedAt:        t0,
		})
		require.NoError(t, err)
		return id
	}

	a := newSession("u1", "hash-a", t0)
	b := newSession("u1", "hash-b", t0.Add(time.Minute))
	newSession("u2", "hash-c", t0)

	list, err := st.Sessions().ListActiveSessions(ctx, "u1", t0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, b, list[0].ID, "most recently active first")

	t.Run("rotation is compare and swap", func(t *testing.T) {
		require.NoError(t, st.Sessions().RotateRefreshHash(ctx, a, "hash-a", "hash-a2", t0.Add(48*time.Hour), t0))
		err := st.Sessions().RotateRefreshHash(ctx, a, "hash-a", "hash-a3", t0.Add(48*time.Hour), t0)
		require.ErrorIs(t, err, store.ErrNotFound)

		s, err := st.Sessions().GetSessionByRefreshHash(ctx, "hash-a2")
		require.NoError(t, err)
		require.Equal(t, a, s.ID)
	})

	t.Run("revoke only touches own active sessions", func(t *testing.T) {
		require.ErrorIs(t, st.Sessions().RevokeSession(ctx, "u2", a, t0), store.ErrNotFound)
		require.NoError(t, st.Sessions().RevokeSession(ctx, "u1", a, t0))
		require.ErrorIs(t, st.Sessions().RevokeSession(ctx, "u1", a, t0), store.ErrNotFound)

		s, err := st.Sessions().GetSessionByID(ctx, a)
		require.NoError(t, err)
		require.False(t, s.Active(t0))

		require.ErrorIs(t, st.Sessions().RotateRefreshHash(ctx, a, "hash-a2", "x", t0, t0), store.ErrNotFound)
	})

	t.Run("revoke all and housekeeping", func(t *testing.T) {
		require.NoError(t, st.Sessions().RevokeAllSessions(ctx, "u1", t0))
		list, err := st.Sessions().ListActiveSessions(ctx, "u1", t0)
		require.NoError(t, err)
		require.Empty(t, list)

		n, err := st.Sessions().DeleteStaleSessions(ctx, t0.Add(time.Second))
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		list, err = st.Sessions().ListActiveSessions(ctx, "u2", t0)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func TestProductsAreSeeded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	products, err := st.Products().ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)
	require.Equal(t, banksdk.AccountChecking, products[0].Type)
	require.NotEmpty(t, products[0].Features)

	mm, err := st.Products().GetProductByType(ctx, banksdk.AccountMoneyMarket)
	require.NoError(t, err)
	require.True(t, mm.MinimumDeposit.Equal(decimal.NewFromInt(2500)))
	require.NotNil(t, mm.MonthlyFee)

	_, err = st.Products().GetProductByType(ctx, "Brokerage")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsAndLoansRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	seedUser(t, st, "u1", "ada@example.com")

	rate := decimal.RequireFromString("4.25")
	maturity := t0.AddDate(1, 0, 0)
	renew := true
	acct := domain.Account{
		ID:               "a1",
		UserID:           "u1",
		AccountNumber:    "1000000001",
		Type:             banksdk.AccountCD,
		Name:             "Share Certificate",
		Balance:          decimal.RequireFromString("1000.10"),
		AvailableBalance: decimal.RequireFromString("1000.10"),
		InterestRate:     &rate,
		MaturityDate:     &maturity,
		AutoRenew:        &renew,
		CreatedAt:        t0,
		UpdatedAt:        t0,
	}
	require.NoError(t, st.Accounts().CreateAccount(ctx, acct))

	got, err := st.Accounts().GetAccount(ctx, "u1", "a1")
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(acct.Balance))
	require.True(t, got.InterestRate.Equal(rate))
	require.Equal(t, maturity, *got.MaturityDate)
	require.True(t, *got.AutoRenew)

	_, err = st.Accounts().GetAccount(ctx, "someone-else", "a1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Accounts().UpdateBalances(ctx, "a1", decimal.NewFromInt(5), decimal.NewFromInt(4), t0))
	got, err = st.Accounts().GetAccount(ctx, "u1", "a1")
	require.NoError(t, err)
	require.Equal(t, "5", got.Balance.String())
	require.Equal(t, "4", got.AvailableBalance.String())

	limit := decimal.NewFromInt(5000)
	loan := domain.Loan{
		ID:              "l1",
		UserID:          "u1",
		AccountNumber:   "7000000001",
		Type:            banksdk.LoanCreditCard,
		Status:          banksdk.LoanActive,
		Balance:         decimal.Zero,
		AvailableCredit: &limit,
		InterestRate:    decimal.RequireFromString("19.99"),
		PaymentAmount:   decimal.Zero,
		NextPaymentDue:  t0.AddDate(0, 1, 0),
		CreditLimit:     &limit,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	}
	require.NoError(t, st.Loans().CreateLoan(ctx, loan))

	gotLoan, err := st.Loans().GetLoan(ctx, "u1", "l1")
	require.NoError(t, err)
	require.Nil(t, gotLoan.Principal)
	require.Nil(t, gotLoan.VehicleVIN)
	require.True(t, gotLoan.CreditLimit.Equal(limit))

	gotLoan.Balance = decimal.NewFromInt(100)
	remaining := limit.Sub(gotLoan.Balance)
	gotLoan.AvailableCredit = &remaining
	require.NoError(t, st.Loans().UpdateLoanBalance(ctx, gotLoan, t0))

	loans, err := st.Loans().ListLoans(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	require.Equal(t, "4900", loans[0].AvailableCredit.String())
}

func TestTransactionsNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)
	seedUser(t, st, "u1", "ada@example.com")

	for i, id := range []string{"t1", "t2", "t3"} {
		at := t0.Add(time.Duration(i) * time.Millisecond)
		require.NoError(t, st.Transactions().CreateTransaction(ctx, domain.Transaction{
			ID:              id,
			UserID:          "u1",
			Type:            banksdk.TransactionTransfer,
			Amount:          decimal.NewFromInt(int64(i + 1)),
			SourceID:        "a1",
			SourceName:      "Checking",
			DestinationID:   "a2",
			DestinationName: "Savings",
			Status:          banksdk.TransactionCompleted,
			CreatedAt:       at,
			UpdatedAt:       at,
		}))
	}

	list, err := st.Transactions().ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "t3", list[0].ID)
	require.Equal(t, "t1", list[2].ID)
	require.Nil(t, list[0].Description)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: "u1", Email: "ada@example.com", CreatedAt: t0, UpdatedAt: t0,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByID(ctx, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{ID: "u1", Email: "ada@example.com", CreatedAt: t0, UpdatedAt: t0})
	}))
	_, err = st.Users().GetUserByID(ctx, "u1")
	require.NoError(t, err)
}
