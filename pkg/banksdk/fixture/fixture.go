// Package fixture is an in-process implementation of banksdk.Banking. It runs
// the mock bank's ledger on an in-memory SQLite database, so front ends and
// tests get real balances and sessions without a server.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store/drivers/sqlite"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/idx"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/shopspring/decimal"
)

const (
	issuer     = "aspen-fixture"
	audience   = "aspen"
	deviceName = "Fixture"
	loopbackIP = "127.0.0.1"
)

// Config configures a Bank. The zero value is usable.
type Config struct {
	// Store holds the token pair. Defaults to a banksdk.MemoryStore.
	Store banksdk.CredentialStore

	Logger *slog.Logger

	// PepperFile is where password hashing keeps its pepper. Defaults to a
	// file under the OS temp directory.
	PepperFile string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SeedDemo creates the demo member (service.DemoEmail).
	SeedDemo bool

	// Now overrides the ledger clock.
	Now func() time.Time
}

// Bank implements banksdk.Banking in process.
type Bank struct {
	log    *slog.Logger
	db     store.Store
	tokens *banksdk.TokenManager

	verifier jwtx.Verifier

	auth         *service.AuthService
	users        *service.UserService
	accounts     *service.AccountService
	loans        *service.LoanService
	transactions *service.TransactionService
}

var _ banksdk.Banking = (*Bank)(nil)

// New opens an empty ledger. Close releases it.
func New(cfg Config) (*Bank, error) {
	if cfg.Store == nil {
		cfg.Store = banksdk.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PepperFile == "" {
		cfg.PepperFile = filepath.Join(os.TempDir(), "aspen-fixture", "pepper")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	cryptox.SetPepperPath(cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("fixture: load pepper: %w", err)
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	signer, err := jwtx.NewSignerEdDSA("fixture-"+idx.New().String(), pemKey)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	db, err := sqlite.NewStore(":memory:")
	if err != nil {
		return nil, fmt.Errorf("fixture: open ledger: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fixture: migrate ledger: %w", err)
	}

	verifier := jwtx.NewVerifierEdDSA(keys, issuer, []string{audience})
	verifier.Now = cfg.Now

	b := &Bank{
		log:      cfg.Logger,
		db:       db,
		tokens:   banksdk.NewTokenManager(cfg.Store, cfg.Logger),
		verifier: verifier,
		auth: &service.AuthService{
			Store:      db,
			Signer:     signer,
			Issuer:     issuer,
			Audience:   []string{audience},
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
			Now:        cfg.Now,
		},
		users:        &service.UserService{Store: db, Now: cfg.Now},
		accounts:     &service.AccountService{Store: db, Now: cfg.Now},
		loans:        &service.LoanService{Store: db, Now: cfg.Now},
		transactions: &service.TransactionService{Store: db, Now: cfg.Now},
	}

	if cfg.SeedDemo {
		ctx := slogx.WithContext(context.Background(), cfg.Logger)
		if _, err := service.SeedDemo(ctx, b.auth, b.accounts, b.loans); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("fixture: seed demo member: %w", err)
		}
	}

	return b, nil
}

// Close releases the ledger.
func (b *Bank) Close() error {
	return b.db.Close()
}

// Credentials returns a snapshot of the stored pair.
func (b *Bank) Credentials(ctx context.Context) (banksdk.Credentials, bool) {
	return b.tokens.Credentials(ctx)
}

// checked validates a request the same way the HTTP client does before
// sending it.
func checked(v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return &banksdk.Error{Kind: banksdk.KindCustom, Message: err.Error(), Err: err}
	}
	return nil
}

func failed(err error) error {
	if err == nil {
		return nil
	}
	return service.ToBankError(err)
}

// member resolves the signed-in member from the stored access token. An
// expired or revoked token is refreshed once, as the HTTP client does on a
// 401, and a second rejection is reported as the 401 itself.
func (b *Bank) member(ctx context.Context) (jwtx.Claims, error) {
	claims, err := b.authorize(ctx)
	if err == nil {
		return claims, nil
	}
	if !errors.Is(err, banksdk.ErrUnauthorized) || b.tokens.AccessToken(ctx) == "" {
		return jwtx.Claims{}, err
	}

	if rerr := b.Refresh(ctx); rerr != nil {
		return jwtx.Claims{}, rerr
	}
	claims, err = b.authorize(ctx)
	var be *banksdk.Error
	if errors.As(err, &be) && be.Kind == banksdk.KindUnauthorized {
		return jwtx.Claims{}, banksdk.ServerError(http.StatusUnauthorized, be.Message)
	}
	return claims, err
}

// retried gives an unauthenticated call rejected with a 401 the same single
// refresh and resend the HTTP client does.
func (b *Bank) retried(ctx context.Context, do func() error) error {
	err := do()
	if !errors.Is(err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: http.StatusUnauthorized}) {
		return err
	}

	if rerr := b.Refresh(ctx); rerr != nil {
		var be *banksdk.Error
		errors.As(err, &be)
		return &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: be.Message, Err: rerr}
	}
	return do()
}

func (b *Bank) authorize(ctx context.Context) (jwtx.Claims, error) {
	tok := b.tokens.AccessToken(ctx)
	if tok == "" {
		return jwtx.Claims{}, &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: "not signed in"}
	}

	claims, err := b.verifier.Verify(tok)
	if err != nil {
		return jwtx.Claims{}, &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: "access token rejected", Err: err}
	}
	if err := b.auth.CheckSession(ctx, claims); err != nil {
		if errors.Is(err, service.ErrSessionRevoked) {
			return jwtx.Claims{}, &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: err.Error(), Err: err}
		}
		return jwtx.Claims{}, failed(err)
	}
	return claims, nil
}

func (b *Bank) save(ctx context.Context, p domain.TokenPair) error {
	expires := banksdk.NewTime(p.ExpiresAt)
	err := b.tokens.Save(ctx, banksdk.Credentials{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    &expires,
	})
	if err != nil {
		return &banksdk.Error{Kind: banksdk.KindCustom, Message: "could not store credentials", Err: err}
	}
	return nil
}

func (b *Bank) clear(ctx context.Context) error {
	if err := b.tokens.Clear(ctx); err != nil {
		return &banksdk.Error{Kind: banksdk.KindCustom, Message: "could not clear credentials", Err: err}
	}
	return nil
}

func ctxWithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return slogx.WithContext(ctx, log)
}

// Register creates a member. It does not sign in.
func (b *Bank) Register(ctx context.Context, req banksdk.RegisterRequest) error {
	if err := checked(req); err != nil {
		return err
	}
	return b.retried(ctx, func() error {
		_, err := b.auth.Register(ctxWithLogger(ctx, b.log), req)
		return failed(err)
	})
}

func (b *Bank) Login(ctx context.Context, email, password string) error {
	req := banksdk.LoginRequest{Email: email, Password: password}
	if err := checked(req); err != nil {
		return err
	}

	var pair domain.TokenPair
	err := b.retried(ctx, func() error {
		var err error
		pair, err = b.auth.Login(ctxWithLogger(ctx, b.log), req, service.Device{Name: deviceName, IP: loopbackIP})
		return failed(err)
	})
	if err != nil {
		return err
	}
	if err := b.save(ctx, pair); err != nil {
		return err
	}

	b.log.Info("signed in")
	return nil
}

// Logout revokes the current session and always clears local tokens.
func (b *Bank) Logout(ctx context.Context) error {
	var remoteErr error
	if claims, err := b.authorize(ctx); err != nil {
		remoteErr = err
	} else {
		remoteErr = failed(b.auth.Logout(ctxWithLogger(ctx, b.log), claims.Subject, claims.SID))
	}

	if err := b.clear(ctx); err != nil {
		return errors.Join(remoteErr, err)
	}
	return remoteErr
}

// Refresh rotates the stored pair. Every failure is KindUnauthorized and
// leaves the stored pair as it was.
func (b *Bank) Refresh(ctx context.Context) error {
	rt := b.tokens.RefreshToken(ctx)
	if rt == "" {
		return &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: "no refresh token"}
	}

	pair, err := b.auth.Refresh(ctxWithLogger(ctx, b.log), banksdk.RefreshTokenRequest{RefreshToken: rt})
	if err != nil {
		b.log.Warn("token refresh failed", "err", err)
		return &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: "token refresh failed", Err: failed(err)}
	}
	if err := b.save(ctx, pair); err != nil {
		return &banksdk.Error{Kind: banksdk.KindUnauthorized, Message: "could not store refreshed credentials", Err: err}
	}
	return nil
}

func (b *Bank) ActiveSessions(ctx context.Context) ([]banksdk.ActiveSession, error) {
	claims, err := b.member(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := b.auth.ActiveSessions(ctx, claims.Subject)
	if err != nil {
		return nil, failed(err)
	}

	current, _ := strconv.ParseInt(claims.SID, 10, 64)
	out := make([]banksdk.ActiveSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ToAPI(current))
	}
	return out, nil
}

func (b *Bank) RevokeSession(ctx context.Context, id int) error {
	claims, err := b.member(ctx)
	if err != nil {
		return err
	}
	return failed(b.auth.RevokeSession(ctx, claims.Subject, int64(id)))
}

// RevokeAllSessions signs out every device and clears local tokens.
func (b *Bank) RevokeAllSessions(ctx context.Context) error {
	claims, err := b.member(ctx)
	if err != nil {
		return err
	}
	if err := b.auth.RevokeAllSessions(ctx, claims.Subject); err != nil {
		return failed(err)
	}
	return b.clear(ctx)
}

// IsAuthenticated reports whether an access token is stored.
func (b *Bank) IsAuthenticated(ctx context.Context) bool {
	return b.tokens.AccessToken(ctx) != ""
}

func (b *Bank) GetProfile(ctx context.Context) (banksdk.UserProfile, error) {
	claims, err := b.member(ctx)
	if err != nil {
		return banksdk.UserProfile{}, err
	}
	u, err := b.users.Profile(ctx, claims.Subject)
	if err != nil {
		return banksdk.UserProfile{}, failed(err)
	}
	return u.ToAPI(), nil
}

func (b *Bank) UpdateProfile(ctx context.Context, req banksdk.UpdateProfileRequest) (banksdk.UserProfile, error) {
	if err := checked(req); err != nil {
		return banksdk.UserProfile{}, err
	}
	claims, err := b.member(ctx)
	if err != nil {
		return banksdk.UserProfile{}, err
	}
	u, err := b.users.UpdateProfile(ctx, claims.Subject, req)
	if err != nil {
		return banksdk.UserProfile{}, failed(err)
	}
	return u.ToAPI(), nil
}

func (b *Bank) ChangePassword(ctx context.Context, req banksdk.ChangePasswordRequest) error {
	if err := checked(req); err != nil {
		return err
	}
	claims, err := b.member(ctx)
	if err != nil {
		return err
	}
	return failed(b.users.ChangePassword(ctx, claims.Subject, req))
}

func (b *Bank) GetAllAccounts(ctx context.Context) ([]banksdk.Account, error) {
	claims, err := b.member(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := b.accounts.List(ctx, claims.Subject)
	if err != nil {
		return nil, failed(err)
	}
	return convert(accounts, domain.Account.ToAPI), nil
}

func (b *Bank) GetAccountTypes(ctx context.Context) ([]banksdk.AccountTypeInfo, error) {
	if _, err := b.member(ctx); err != nil {
		return nil, err
	}
	products, err := b.accounts.Products(ctx)
	if err != nil {
		return nil, failed(err)
	}
	return convert(products, domain.AccountProduct.ToAPI), nil
}

func (b *Bank) GetAccount(ctx context.Context, id string) (banksdk.Account, error) {
	claims, err := b.member(ctx)
	if err != nil {
		return banksdk.Account{}, err
	}
	a, err := b.accounts.Get(ctx, claims.Subject, id)
	if err != nil {
		return banksdk.Account{}, failed(err)
	}
	return a.ToAPI(), nil
}

func (b *Bank) CreateCheckingAccount(ctx context.Context, req banksdk.CheckingAccountRequest) (banksdk.Account, error) {
	return call(ctx, b, req, b.accounts.OpenChecking, domain.Account.ToAPI)
}

func (b *Bank) CreateSavingsAccount(ctx context.Context, req banksdk.SavingsAccountRequest) (banksdk.Account, error) {
	return call(ctx, b, req, b.accounts.OpenSavings, domain.Account.ToAPI)
}

func (b *Bank) CreateCDAccount(ctx context.Context, req banksdk.CDAccountRequest) (banksdk.Account, error) {
	return call(ctx, b, req, b.accounts.OpenCD, domain.Account.ToAPI)
}

func (b *Bank) CreateMoneyMarketAccount(ctx context.Context, req banksdk.MoneyMarketAccountRequest) (banksdk.Account, error) {
	return call(ctx, b, req, b.accounts.OpenMoneyMarket, domain.Account.ToAPI)
}

func (b *Bank) ApplyForMortgage(ctx context.Context, req banksdk.MortgageLoanRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForMortgage, domain.Loan.ToAPI)
}

func (b *Bank) ApplyForAutoLoan(ctx context.Context, req banksdk.AutoLoanRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForAutoLoan, domain.Loan.ToAPI)
}

func (b *Bank) ApplyForCreditCard(ctx context.Context, req banksdk.CreditCardRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForCreditCard, domain.Loan.ToAPI)
}

func (b *Bank) ApplyForPersonalLoan(ctx context.Context, req banksdk.PersonalLoanRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForPersonalLoan, domain.Loan.ToAPI)
}

func (b *Bank) ApplyForHELOC(ctx context.Context, req banksdk.HELOCRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForHELOC, domain.Loan.ToAPI)
}

func (b *Bank) ApplyForPersonalLineOfCredit(ctx context.Context, req banksdk.PersonalLineOfCreditRequest) (banksdk.Loan, error) {
	return call(ctx, b, req, b.loans.ApplyForPersonalLineOfCredit, domain.Loan.ToAPI)
}

func (b *Bank) GetTransactionHistory(ctx context.Context) ([]banksdk.Transaction, error) {
	claims, err := b.member(ctx)
	if err != nil {
		return nil, err
	}
	history, err := b.transactions.History(ctx, claims.Subject)
	if err != nil {
		return nil, failed(err)
	}
	return convert(history, domain.Transaction.ToAPI), nil
}

func (b *Bank) TransferBetweenAccounts(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal, description *string) (banksdk.Transaction, error) {
	return b.transact(ctx, banksdk.TransactionRequest{
		Type:                 banksdk.TransactionTransfer,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Description:          description,
	})
}

func (b *Bank) MakeLoanPayment(ctx context.Context, sourceID, loanID string, amount decimal.Decimal, description *string) (banksdk.Transaction, error) {
	return b.transact(ctx, banksdk.TransactionRequest{
		Type:                 banksdk.TransactionLoanPayment,
		SourceAccountID:      sourceID,
		DestinationAccountID: loanID,
		Amount:               amount,
		Description:          description,
	})
}

func (b *Bank) RequestLoanAdvance(ctx context.Context, loanID, destinationID string, amount decimal.Decimal, description *string) (banksdk.Transaction, error) {
	return b.transact(ctx, banksdk.TransactionRequest{
		Type:                 banksdk.TransactionLoanAdvance,
		SourceAccountID:      loanID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Description:          description,
	})
}

func (b *Bank) transact(ctx context.Context, req banksdk.TransactionRequest) (banksdk.Transaction, error) {
	return call(ctx, b, req, b.transactions.Create, domain.Transaction.ToAPI)
}

// call validates req, resolves the member and runs fn on their behalf.
func call[Req interface{ Validate() error }, D, A any](
	ctx context.Context,
	b *Bank,
	req Req,
	fn func(context.Context, string, Req) (D, error),
	conv func(D) A,
) (A, error) {
	var zero A
	if err := checked(req); err != nil {
		return zero, err
	}
	claims, err := b.member(ctx)
	if err != nil {
		return zero, err
	}

	out, err := fn(ctxWithLogger(ctx, b.log), claims.Subject, req)
	if err != nil {
		return zero, failed(err)
	}
	return conv(out), nil
}

func convert[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
