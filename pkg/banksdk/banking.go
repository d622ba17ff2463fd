package banksdk

import (
	"context"

	"github.com/shopspring/decimal"
)

// AuthAPI manages the member's session.
type AuthAPI interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	ActiveSessions(ctx context.Context) ([]ActiveSession, error)
	RevokeSession(ctx context.Context, id int) error
	RevokeAllSessions(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}

type UserAPI interface {
	GetProfile(ctx context.Context) (UserProfile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserProfile, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}

type AccountAPI interface {
	GetAllAccounts(ctx context.Context) ([]Account, error)
	GetAccountTypes(ctx context.Context) ([]AccountTypeInfo, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	CreateCheckingAccount(ctx context.Context, req CheckingAccountRequest) (Account, error)
	CreateSavingsAccount(ctx context.Context, req SavingsAccountRequest) (Account, error)
	CreateCDAccount(ctx context.Context, req CDAccountRequest) (Account, error)
	CreateMoneyMarketAccount(ctx context.Context, req MoneyMarketAccountRequest) (Account, error)
}

type LoanAPI interface {
	ApplyForMortgage(ctx context.Context, req MortgageLoanRequest) (Loan, error)
	ApplyForAutoLoan(ctx context.Context, req AutoLoanRequest) (Loan, error)
	ApplyForCreditCard(ctx context.Context, req CreditCardRequest) (Loan, error)
	ApplyForPersonalLoan(ctx context.Context, req PersonalLoanRequest) (Loan, error)
	ApplyForHELOC(ctx context.Context, req HELOCRequest) (Loan, error)
	ApplyForPersonalLineOfCredit(ctx context.Context, req PersonalLineOfCreditRequest) (Loan, error)
}

type TransactionAPI interface {
	GetTransactionHistory(ctx context.Context) ([]Transaction, error)
	TransferBetweenAccounts(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal, description *string) (Transaction, error)
	MakeLoanPayment(ctx context.Context, sourceID, loanID string, amount decimal.Decimal, description *string) (Transaction, error)
	RequestLoanAdvance(ctx context.Context, loanID, destinationID string, amount decimal.Decimal, description *string) (Transaction, error)
}

// Banking is everything a front end needs. *Client implements it over HTTP
// and fixture.Bank implements it in memory.
type Banking interface {
	AuthAPI
	UserAPI
	AccountAPI
	LoanAPI
	TransactionAPI
}

var _ Banking = (*Client)(nil)
