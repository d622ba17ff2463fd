package fixture_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/banksdk/fixture"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const password = "correct-horse-battery"

var pepperFile string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "fixture-pepper")
	if err != nil {
		panic(err)
	}
	pepperFile = filepath.Join(dir, "pepper")

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newBank(t *testing.T, store banksdk.CredentialStore) *fixture.Bank {
	t.Helper()
	b, err := fixture.New(fixture.Config{
		Store:      store,
		Logger:     slogx.Discard(),
		PepperFile: pepperFile,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func signUp(t *testing.T, b *fixture.Bank, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, b.Register(ctx, banksdk.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		FirstName:       "Grace",
		LastName:        "Hopper",
	}))
	require.NoError(t, b.Login(ctx, email, password))
}

func TestBankingFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newBank(t, nil)
	signUp(t, b, "grace@example.com")

	profile, err := b.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", profile.Email)

	accounts, err := b.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.NotNil(t, accounts)
	require.Empty(t, accounts)

	types, err := b.GetAccountTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 4)

	checking, err := b.CreateCheckingAccount(ctx, banksdk.CheckingAccountRequest{InitialDeposit: decimal.NewFromInt(800)})
	require.NoError(t, err)
	savings, err := b.CreateSavingsAccount(ctx, banksdk.SavingsAccountRequest{
		InitialDeposit: decimal.NewFromInt(200), InterestRate: decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)

	tx, err := b.TransferBetweenAccounts(ctx, checking.ID, savings.ID, decimal.RequireFromString("150.25"), nil)
	require.NoError(t, err)
	require.Equal(t, banksdk.TransactionTransfer, tx.Type)

	got, err := b.GetAccount(ctx, checking.ID)
	require.NoError(t, err)
	require.Equal(t, "649.75", got.Balance.StringFixed(2))

	card, err := b.ApplyForCreditCard(ctx, banksdk.CreditCardRequest{
		InterestRate: decimal.NewFromInt(18), CreditLimit: decimal.NewFromInt(1000),
		AnnualFee: decimal.Zero, RewardProgram: "Cashback",
	})
	require.NoError(t, err)

	_, err = b.RequestLoanAdvance(ctx, card.ID, checking.ID, decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	_, err = b.MakeLoanPayment(ctx, savings.ID, card.ID, decimal.NewFromInt(40), nil)
	require.NoError(t, err)

	history, err := b.GetTransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)

	t.Run("ledger errors carry the bank's status", func(t *testing.T) {
		_, err := b.TransferBetweenAccounts(ctx, savings.ID, checking.ID, decimal.NewFromInt(1_000_000), nil)
		require.ErrorIs(t, err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: http.StatusUnprocessableEntity})

		_, err = b.GetAccount(ctx, "missing")
		require.ErrorIs(t, err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: http.StatusNotFound})
	})

	t.Run("invalid requests fail before reaching the ledger", func(t *testing.T) {
		_, err := b.CreateCheckingAccount(ctx, banksdk.CheckingAccountRequest{InitialDeposit: decimal.NewFromInt(-5)})
		require.ErrorIs(t, err, banksdk.ErrCustom)

		err = b.ChangePassword(ctx, banksdk.ChangePasswordRequest{})
		require.ErrorIs(t, err, banksdk.ErrCustom)
	})
}

func TestSignedOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newBank(t, nil)

	require.False(t, b.IsAuthenticated(ctx))

	_, err := b.GetAllAccounts(ctx)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized)
	require.ErrorIs(t, b.Refresh(ctx), banksdk.ErrUnauthorized)

	err = b.Login(ctx, "nobody@example.com", password)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized, "nothing to refresh with")
	require.ErrorContains(t, err, "invalid email or password")
	require.False(t, b.IsAuthenticated(ctx))
}

func TestRejectedLoginRefreshesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newBank(t, nil)
	signUp(t, b, "twice@example.com")

	before, ok := b.Credentials(ctx)
	require.True(t, ok)

	err := b.Login(ctx, "twice@example.com", "not-the-password")
	require.ErrorIs(t, err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: http.StatusUnauthorized})

	after, ok := b.Credentials(ctx)
	require.True(t, ok)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken, "the stored pair was rotated once")

	_, err = b.GetProfile(ctx)
	require.NoError(t, err)
}

func TestRejectedAccessTokenIsRefreshed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := banksdk.NewMemoryStore()
	b := newBank(t, store)
	signUp(t, b, "refresh@example.com")

	before, ok := b.Credentials(ctx)
	require.True(t, ok)
	require.NoError(t, store.Set(ctx, banksdk.KeyAccessToken, "not-a-jwt"))

	_, err := b.GetProfile(ctx)
	require.NoError(t, err)

	after, ok := b.Credentials(ctx)
	require.True(t, ok)
	require.NotEqual(t, "not-a-jwt", after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
}

func TestRevokedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newBank(t, nil)
	signUp(t, b, "revoke@example.com")

	sessions, err := b.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.True(t, sessions[0].IsCurrentSession)
	require.Equal(t, "127.0.0.1", sessions[0].IPAddress)

	require.NoError(t, b.RevokeSession(ctx, sessions[0].ID))

	_, err = b.GetProfile(ctx)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized)
	require.True(t, b.IsAuthenticated(ctx), "a failed refresh keeps the stored pair")

	require.ErrorIs(t, b.Logout(ctx), banksdk.ErrUnauthorized)
	require.False(t, b.IsAuthenticated(ctx))
}

func TestRevokeAllClearsTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newBank(t, nil)
	signUp(t, b, "all@example.com")

	require.NoError(t, b.RevokeAllSessions(ctx))
	require.False(t, b.IsAuthenticated(ctx))

	require.NoError(t, b.Login(ctx, "all@example.com", password))
	require.NoError(t, b.Logout(ctx))
	require.False(t, b.IsAuthenticated(ctx))
}

func TestSeedDemo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b, err := fixture.New(fixture.Config{Logger: slogx.Discard(), PepperFile: pepperFile, SeedDemo: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Login(ctx, service.DemoEmail, service.DemoPassword))
	accounts, err := b.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}
