package domain

import (
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID               string
	UserID           string
	AccountNumber    string
	Type             banksdk.AccountType
	Name             string
	Balance          decimal.Decimal
	AvailableBalance decimal.Decimal
	InterestRate     *decimal.Decimal
	MaturityDate     *time.Time
	AutoRenew        *bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AccountProduct describes an account type members can open.
type AccountProduct struct {
	ID             string
	Type           banksdk.AccountType
	Name           string
	Description    string
	MinimumDeposit decimal.Decimal
	MonthlyFee     *decimal.Decimal
	Features       []string
}
