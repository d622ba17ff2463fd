package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

// Demo member credentials, printed by the server when seeding is enabled.
const (
	DemoEmail    = "demo@aspen.example"
	DemoPassword = "aspen-demo-1"
)

// SeedDemo creates a demo member with a checking account, a savings account
// and a credit card. It reports false if the member already exists.
func SeedDemo(ctx context.Context, auth *AuthService, accounts *AccountService, loans *LoanService) (bool, error) {
	u, err := auth.Register(ctx, banksdk.RegisterRequest{
		Email:           DemoEmail,
		Password:        DemoPassword,
		ConfirmPassword: DemoPassword,
		FirstName:       "Demo",
		LastName:        "Member",
	})
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := accounts.OpenChecking(ctx, u.ID, banksdk.CheckingAccountRequest{
		InitialDeposit: decimal.NewFromInt(2500),
	}); err != nil {
		return false, err
	}
	if _, err := accounts.OpenSavings(ctx, u.ID, banksdk.SavingsAccountRequest{
		InitialDeposit: decimal.NewFromInt(10000),
		InterestRate:   decimal.RequireFromString("3.5"),
	}); err != nil {
		return false, err
	}
	if _, err := loans.ApplyForCreditCard(ctx, u.ID, banksdk.CreditCardRequest{
		InterestRate:  decimal.RequireFromString("18.9"),
		CreditLimit:   decimal.NewFromInt(5000),
		AnnualFee:     decimal.Zero,
		RewardProgram: "Cashback",
	}); err != nil {
		return false, err
	}
	return true, nil
}
