package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *AccountService) Products(ctx context.Context) ([]domain.AccountProduct, error) {
	return s.Store.Products().ListProducts(ctx)
}

func (s *AccountService) List(ctx context.Context, userID string) ([]domain.Account, error) {
	return s.Store.Accounts().ListAccounts(ctx, userID)
}

// Get only returns accounts the member owns. Anyone else's account looks
// the same as a missing one.
func (s *AccountService) Get(ctx context.Context, userID, id string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccount(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return a, err
}

func (s *AccountService) OpenChecking(ctx context.Context, userID string, req banksdk.CheckingAccountRequest) (domain.Account, error) {
	if err := validate(req); err != nil {
		return domain.Account{}, err
	}
	return s.open(ctx, userID, domain.Account{Type: banksdk.AccountChecking}, req.InitialDeposit)
}

func (s *AccountService) OpenSavings(ctx context.Context, userID string, req banksdk.SavingsAccountRequest) (domain.Account, error) {
	if err := validate(req); err != nil {
		return domain.Account{}, err
	}
	return s.open(ctx, userID, domain.Account{
		Type:         banksdk.AccountSavings,
		InterestRate: &req.InterestRate,
	}, req.InitialDeposit)
}

func (s *AccountService) OpenCD(ctx context.Context, userID string, req banksdk.CDAccountRequest) (domain.Account, error) {
	if err := validate(req); err != nil {
		return domain.Account{}, err
	}
	if !req.MaturityDate.After(clock(s.Now)) {
		return domain.Account{}, &ValidationError{Err: errors.New("maturityDate: must be in the future")}
	}

	maturity := req.MaturityDate.UTC()
	return s.open(ctx, userID, domain.Account{
		Type:         banksdk.AccountCD,
		InterestRate: &req.InterestRate,
		MaturityDate: &maturity,
		AutoRenew:    &req.AutoRenew,
	}, req.InitialDeposit)
}

func (s *AccountService) OpenMoneyMarket(ctx context.Context, userID string, req banksdk.MoneyMarketAccountRequest) (domain.Account, error) {
	if err := validate(req); err != nil {
		return domain.Account{}, err
	}
	return s.open(ctx, userID, domain.Account{
		Type:         banksdk.AccountMoneyMarket,
		InterestRate: &req.InterestRate,
	}, req.InitialDeposit)
}

// open fills in the common fields of a and stores it. The opening deposit
// has to meet the product minimum.
func (s *AccountService) open(
	ctx context.Context,
	userID string,
	a domain.Account,
	deposit decimal.Decimal,
) (domain.Account, error) {
	if err := checkCents("initialDeposit", deposit); err != nil {
		return domain.Account{}, err
	}

	product, err := s.Store.Products().GetProductByType(ctx, a.Type)
	if err != nil {
		return domain.Account{}, err
	}
	if deposit.LessThan(product.MinimumDeposit) {
		return domain.Account{}, fmt.Errorf("%w: %s requires at least %s",
			ErrBelowMinimumDeposit, product.Name, product.MinimumDeposit.StringFixed(2))
	}

	now := clock(s.Now)
	a.ID = uuid.NewString()
	a.UserID = userID
	a.AccountNumber = newAccountNumber(accountPrefix)
	a.Name = product.Name
	a.Balance = deposit
	a.AvailableBalance = deposit
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.Store.Accounts().CreateAccount(ctx, a); err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("account opened", "account_id", a.ID, "type", a.Type)
	return a, nil
}

const (
	accountPrefix = 4
	loanPrefix    = 7
)

// newAccountNumber returns a ten digit number starting with prefix.
func newAccountNumber(prefix int) string {
	return fmt.Sprintf("%d%09d", prefix, rand.N(1_000_000_000))
}

// checkCents rejects amounts with fractions of a cent.
func checkCents(field string, d decimal.Decimal) error {
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return &ValidationError{Err: fmt.Errorf("%s: must not have more than two decimal places", field)}
	}
	return nil
}
