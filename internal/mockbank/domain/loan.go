package domain

import (
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/shopspring/decimal"
)

// Loan covers both instalment loans and lines of credit. Fields that only
// apply to one product are nil for the others.
type Loan struct {
	ID              string
	UserID          string
	AccountNumber   string
	Type            banksdk.LoanType
	Status          banksdk.LoanStatus
	Balance         decimal.Decimal
	AvailableCredit *decimal.Decimal
	InterestRate    decimal.Decimal
	PaymentAmount   decimal.Decimal
	NextPaymentDue  time.Time

	Principal        *decimal.Decimal
	MaturityDate     *time.Time
	LoanTermMonths   *int
	CreditLimit      *decimal.Decimal
	DrawPeriodMonths *int
	PropertyAddress  *string
	PropertyValue    *decimal.Decimal
	VehicleVIN       *string
	RewardProgram    *string
	AnnualFee        *decimal.Decimal
	IsSecured        *bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is how the loan shows up in transaction history.
func (l Loan) DisplayName() string {
	n := l.AccountNumber
	if len(n) > 4 {
		n = n[len(n)-4:]
	}
	return string(l.Type) + " ..." + n
}
