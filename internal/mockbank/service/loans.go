package service

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanService approves every application that passes validation. Instalment
// loans start with the full principal outstanding; lines of credit start
// at zero with the whole limit available.
type LoanService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *LoanService) List(ctx context.Context, userID string) ([]domain.Loan, error) {
	return s.Store.Loans().ListLoans(ctx, userID)
}

func (s *LoanService) ApplyForMortgage(ctx context.Context, userID string, req banksdk.MortgageLoanRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	addr := strings.TrimSpace(req.PropertyAddress)
	return s.instalment(ctx, userID, domain.Loan{
		Type:            banksdk.LoanMortgage,
		PropertyAddress: &addr,
	}, req.Principal, req.InterestRate, req.LoanTermYears*12)
}

func (s *LoanService) ApplyForAutoLoan(ctx context.Context, userID string, req banksdk.AutoLoanRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	vin := strings.ToUpper(req.VehicleVIN)
	return s.instalment(ctx, userID, domain.Loan{
		Type:       banksdk.LoanAuto,
		VehicleVIN: &vin,
	}, req.Principal, req.InterestRate, req.LoanTermMonths)
}

func (s *LoanService) ApplyForPersonalLoan(ctx context.Context, userID string, req banksdk.PersonalLoanRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	return s.instalment(ctx, userID, domain.Loan{
		Type:      banksdk.LoanPersonal,
		IsSecured: &req.IsSecured,
	}, req.Principal, req.InterestRate, req.LoanTermMonths)
}

func (s *LoanService) ApplyForCreditCard(ctx context.Context, userID string, req banksdk.CreditCardRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	reward := strings.TrimSpace(req.RewardProgram)
	return s.revolving(ctx, userID, domain.Loan{
		Type:          banksdk.LoanCreditCard,
		RewardProgram: &reward,
		AnnualFee:     &req.AnnualFee,
	}, req.CreditLimit, req.InterestRate)
}

func (s *LoanService) ApplyForHELOC(ctx context.Context, userID string, req banksdk.HELOCRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	addr := strings.TrimSpace(req.PropertyAddress)
	draw := req.DrawPeriodMonths
	return s.revolving(ctx, userID, domain.Loan{
		Type:             banksdk.LoanHELOC,
		PropertyAddress:  &addr,
		PropertyValue:    &req.PropertyValue,
		DrawPeriodMonths: &draw,
		IsSecured:        ptr(true),
	}, req.CreditLimit, req.InterestRate)
}

func (s *LoanService) ApplyForPersonalLineOfCredit(ctx context.Context, userID string, req banksdk.PersonalLineOfCreditRequest) (domain.Loan, error) {
	if err := validate(req); err != nil {
		return domain.Loan{}, err
	}
	draw := req.DrawPeriodMonths
	return s.revolving(ctx, userID, domain.Loan{
		Type:             banksdk.LoanPersonalLineOfCredit,
		DrawPeriodMonths: &draw,
		IsSecured:        &req.IsSecured,
	}, req.CreditLimit, req.InterestRate)
}

func (s *LoanService) instalment(
	ctx context.Context,
	userID string,
	l domain.Loan,
	principal, rate decimal.Decimal,
	months int,
) (domain.Loan, error) {
	if err := checkCents("principal", principal); err != nil {
		return domain.Loan{}, err
	}

	now := clock(s.Now)
	maturity := now.AddDate(0, months, 0)
	l.Principal = &principal
	l.Balance = principal
	l.InterestRate = rate
	l.LoanTermMonths = &months
	l.MaturityDate = &maturity
	l.PaymentAmount = AmortizedPayment(principal, rate, months)
	return s.create(ctx, userID, l, now)
}

func (s *LoanService) revolving(
	ctx context.Context,
	userID string,
	l domain.Loan,
	limit, rate decimal.Decimal,
) (domain.Loan, error) {
	if err := checkCents("creditLimit", limit); err != nil {
		return domain.Loan{}, err
	}

	available := limit
	l.CreditLimit = &limit
	l.AvailableCredit = &available
	l.Balance = decimal.Zero
	l.InterestRate = rate
	l.PaymentAmount = MinimumPayment(decimal.Zero)
	return s.create(ctx, userID, l, clock(s.Now))
}

func (s *LoanService) create(ctx context.Context, userID string, l domain.Loan, now time.Time) (domain.Loan, error) {
	l.ID = uuid.NewString()
	l.UserID = userID
	l.AccountNumber = newAccountNumber(loanPrefix)
	l.Status = banksdk.LoanActive
	l.NextPaymentDue = now.AddDate(0, 1, 0)
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.Store.Loans().CreateLoan(ctx, l); err != nil {
		return domain.Loan{}, err
	}

	slogx.FromContext(ctx).Info("loan approved", "loan_id", l.ID, "type", l.Type)
	return l, nil
}

var (
	one            = decimal.NewFromInt(1)
	monthsPerYear  = decimal.NewFromInt(12)
	hundred        = decimal.NewFromInt(100)
	minimumPayment = decimal.NewFromInt(25)
	minimumRate    = decimal.RequireFromString("0.02")
)

// AmortizedPayment is the fixed monthly payment that clears principal over
// months at an annual percentage rate, rounded to cents.
func AmortizedPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return principal
	}
	n := decimal.NewFromInt(int64(months))
	if annualRate.IsZero() {
		return principal.Div(n).Round(2)
	}

	r := annualRate.Div(hundred).Div(monthsPerYear)
	f := r.Add(one).Pow(n)
	return principal.Mul(r).Mul(f).Div(f.Sub(one)).Round(2)
}

// MinimumPayment for a line of credit: 2% of the balance, at least 25, never
// more than the balance itself.
func MinimumPayment(balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	p := decimal.Max(balance.Mul(minimumRate).Round(2), minimumPayment)
	return decimal.Min(p, balance)
}

func ptr[T any](v T) *T { return &v }
