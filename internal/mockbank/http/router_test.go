package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mockhttp "github.com/aussiebroadwan/aspen/internal/mockbank/http"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store/drivers/sqlite"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "mockbank-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const password = "correct horse"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	aud := []string{"aspen"}
	r := mockhttp.NewRouter(keys, jwtx.NewVerifierEdDSA(keys, "mockbank", aud), "test", st, slogx.Discard())
	r.AuthService = &service.AuthService{
		Store:      st,
		Signer:     signer,
		Issuer:     "mockbank",
		Audience:   aud,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	r.UserService = &service.UserService{Store: st}
	r.AccountService = &service.AccountService{Store: st}
	r.LoanService = &service.LoanService{Store: st}
	r.TransactionService = &service.TransactionService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, device string) *banksdk.Client {
	t.Helper()
	c, err := banksdk.New(banksdk.Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Logger:     slogx.Discard(),
		DeviceName: device,
	})
	require.NoError(t, err)
	return c
}

func signUp(t *testing.T, c *banksdk.Client, email string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, banksdk.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		FirstName:       "Ada",
		LastName:        "Lovelace",
	}))
	require.NoError(t, c.Login(ctx, email, password))
}

func TestBankingFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClient(t, newServer(t), "iPhone")
	signUp(t, c, "ada@example.com")
	require.True(t, c.IsAuthenticated(ctx))

	profile, err := c.GetProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", profile.Email)
	require.Equal(t, "Ada Lovelace", profile.FullName())

	accounts, err := c.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.NotNil(t, accounts)
	require.Empty(t, accounts)

	types, err := c.GetAccountTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 4)

	checking, err := c.CreateCheckingAccount(ctx, banksdk.CheckingAccountRequest{InitialDeposit: decimal.NewFromInt(500)})
	require.NoError(t, err)
	savings, err := c.CreateSavingsAccount(ctx, banksdk.SavingsAccountRequest{
		InitialDeposit: decimal.NewFromInt(100), InterestRate: decimal.RequireFromString("3.25"),
	})
	require.NoError(t, err)
	require.Equal(t, "3.25", savings.InterestRate.String())

	desc := "rainy day"
	txn, err := c.TransferBetweenAccounts(ctx, checking.ID, savings.ID, decimal.RequireFromString("120.75"), &desc)
	require.NoError(t, err)
	require.Equal(t, banksdk.TransactionTransfer, txn.Type)
	require.Equal(t, banksdk.TransactionCompleted, txn.Status)
	require.Equal(t, &desc, txn.Description)

	got, err := c.GetAccount(ctx, checking.ID)
	require.NoError(t, err)
	require.Equal(t, "379.25", got.Balance.StringFixed(2))

	card, err := c.ApplyForCreditCard(ctx, banksdk.CreditCardRequest{
		InterestRate: decimal.NewFromInt(20), CreditLimit: decimal.NewFromInt(1000),
		AnnualFee: decimal.Zero, RewardProgram: "Travel",
	})
	require.NoError(t, err)
	require.True(t, card.Type.Revolving())

	_, err = c.RequestLoanAdvance(ctx, card.ID, checking.ID, decimal.NewFromInt(200), nil)
	require.NoError(t, err)
	_, err = c.MakeLoanPayment(ctx, savings.ID, card.ID, decimal.NewFromInt(50), nil)
	require.NoError(t, err)

	history, err := c.GetTransactionHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)

	t.Run("server errors carry the status and message", func(t *testing.T) {
		_, err := c.TransferBetweenAccounts(ctx, checking.ID, savings.ID, decimal.NewFromInt(10_000), nil)
		var be *banksdk.Error
		require.ErrorAs(t, err, &be)
		require.Equal(t, banksdk.KindServerError, be.Kind)
		require.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
		require.Contains(t, be.Message, "insufficient funds")

		_, err = c.GetAccount(ctx, "does-not-exist")
		require.ErrorAs(t, err, &be)
		require.Equal(t, http.StatusNotFound, be.StatusCode)
	})

	t.Run("profile and password", func(t *testing.T) {
		phone := "0400 000 000"
		updated, err := c.UpdateProfile(ctx, banksdk.UpdateProfileRequest{FirstName: "Augusta", LastName: "King", PhoneNumber: &phone})
		require.NoError(t, err)
		require.Equal(t, "Augusta King", updated.FullName())

		err = c.ChangePassword(ctx, banksdk.ChangePasswordRequest{
			CurrentPassword: "nope nope", NewPassword: "new password", ConfirmPassword: "new password",
		})
		require.ErrorIs(t, err, banksdk.ErrServerError)

		require.NoError(t, c.ChangePassword(ctx, banksdk.ChangePasswordRequest{
			CurrentPassword: password, NewPassword: "new password", ConfirmPassword: "new password",
		}))
	})
}

func TestSessionsAcrossDevices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	srv := newServer(t)

	phone := newClient(t, srv, "iPhone")
	signUp(t, phone, "ada@example.com")
	laptop := newClient(t, srv, "MacBook")
	require.NoError(t, laptop.Login(ctx, "ada@example.com", password))

	sessions, err := laptop.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var phoneID int
	for _, s := range sessions {
		switch s.DeviceName {
		case "MacBook":
			require.True(t, s.IsCurrentSession)
		case "iPhone":
			require.False(t, s.IsCurrentSession)
			phoneID = s.ID
		}
		require.Equal(t, "127.0.0.1", s.IPAddress)
	}
	require.NotZero(t, phoneID)

	require.NoError(t, laptop.RevokeSession(ctx, phoneID))

	// The phone's access token dies with the session, and so does its
	// refresh token.
	_, err = phone.GetProfile(ctx)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized)
	require.ErrorIs(t, phone.Refresh(ctx), banksdk.ErrUnauthorized)

	err = laptop.RevokeSession(ctx, phoneID)
	var be *banksdk.Error
	require.ErrorAs(t, err, &be)
	require.Equal(t, http.StatusNotFound, be.StatusCode)

	require.NoError(t, laptop.Logout(ctx))
	require.False(t, laptop.IsAuthenticated(ctx))
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newClient(t, newServer(t), "iPhone")
	signUp(t, c, "ada@example.com")

	before, ok := c.Credentials(ctx)
	require.True(t, ok)
	require.NoError(t, c.Refresh(ctx))
	after, ok := c.Credentials(ctx)
	require.True(t, ok)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.NotNil(t, after.ExpiresAt)

	_, err := c.GetProfile(ctx)
	require.NoError(t, err)
}

func TestRawRequests(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	do := func(t *testing.T, method, path, body, token string) (*http.Response, map[string]any) {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var out map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	t.Run("missing bearer token", func(t *testing.T) {
		resp, body := do(t, http.MethodGet, "/api/v1/accounts", "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "missing bearer token", body["message"])
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := do(t, http.MethodGet, "/api/v1/accounts", "", "not.a.jwt")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, "/api/v1/auth/register", "{", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid JSON in request body", body["message"])
	})

	t.Run("validation message is returned", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, "/api/v1/auth/register",
			`{"email":"x@example.com","password":"short","confirmPassword":"short","firstName":"A","lastName":"B"}`, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body["message"], "password")
	})

	t.Run("bad credentials", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"who@example.com","password":"whatever1"}`, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid email or password", body["message"])
	})

	t.Run("session id must be numeric", func(t *testing.T) {
		c := newClient(t, srv, "cli")
		signUp(t, c, "grace@example.com")
		creds, _ := c.Credentials(context.Background())

		resp, _ := do(t, http.MethodPost, "/api/v1/auth/revoke-session/abc", "", creds.AccessToken)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("responses are not cached", func(t *testing.T) {
		resp, _ := do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"who@example.com","password":"whatever1"}`, "")
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	})
}

func TestLoginIsRateLimitedPerEmail(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	login := func(email string) int {
		resp, err := srv.Client().Post(srv.URL+"/api/v1/auth/login", "application/json",
			strings.NewReader(`{"email":"`+email+`","password":"wrong-password"}`))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	var last int
	for range 10 {
		last = login("victim@example.com")
	}
	require.Equal(t, http.StatusTooManyRequests, last)
	require.Equal(t, http.StatusUnauthorized, login("someone-else@example.com"))
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	srv := newServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			resp, err := srv.Client().Get(srv.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var health banksdk.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
			require.Equal(t, "ok", health.Status)
			require.Equal(t, "test", health.Version)
		})
	}

	t.Run("jwks", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/.well-known/jwks.json")
		require.NoError(t, err)
		defer resp.Body.Close()

		var set jwtx.JWKS
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
		require.Len(t, set.Keys, 1)
		require.Equal(t, "k1", set.Keys[0].Kid)
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/livez", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "req-123")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
	})
}
