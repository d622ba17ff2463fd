package banksdk

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Auth
// ============================================================================

// Credentials is the token pair held in the CredentialStore.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *Time
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(matches(r.Password))),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse is returned by login.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    Time   `json:"expiresAt"`
}

func (r AuthResponse) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// TokenResponse is returned by the refresh endpoint.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    *Time  `json:"expiresAt,omitempty"`
}

func (r TokenResponse) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// ActiveSession is one signed-in device.
type ActiveSession struct {
	ID               int    `json:"id"`
	DeviceName       string `json:"deviceName"`
	IPAddress        string `json:"ipAddress"`
	LastActive       Time   `json:"lastActive"`
	IsCurrentSession bool   `json:"isCurrentSession"`
}

func (s ActiveSession) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required, validation.Min(1)),
	)
}

// ============================================================================
// User
// ============================================================================

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

type UserProfile struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	CreatedAt   Time    `json:"createdAt"`
	UpdatedAt   Time    `json:"updatedAt"`
}

func (p UserProfile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Email, validation.Required),
	)
}

// FullName joins first and last name.
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type UpdateProfileRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.PhoneNumber, validation.NilOrNotEmpty, validation.Length(0, 32)),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, MaxPasswordLength)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(matches(r.NewPassword))),
	)
}

// ============================================================================
// Accounts
// ============================================================================

type AccountType string

const (
	AccountChecking    AccountType = "Checking"
	AccountSavings     AccountType = "Savings"
	AccountCD          AccountType = "CD"
	AccountMoneyMarket AccountType = "MoneyMarket"
)

var accountTypes = []any{AccountChecking, AccountSavings, AccountCD, AccountMoneyMarket}

type Account struct {
	ID               string          `json:"id"`
	AccountNumber    string          `json:"accountNumber"`
	Type             AccountType     `json:"type"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Name             string          `json:"name"`
	CreatedAt        Time            `json:"createdAt"`
	UpdatedAt        Time            `json:"updatedAt"`

	InterestRate *decimal.Decimal `json:"interestRate,omitempty"`
	MaturityDate *Time            `json:"maturityDate,omitempty"`
	AutoRenew    *bool            `json:"autoRenew,omitempty"`
}

func (a Account) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.AccountNumber, validation.Required),
		validation.Field(&a.Type, validation.Required, validation.In(accountTypes...)),
	)
}

// PendingAmount is the part of the balance not yet available.
func (a Account) PendingAmount() decimal.Decimal {
	return a.Balance.Sub(a.AvailableBalance)
}

type AccountTypeInfo struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	MinimumDeposit decimal.Decimal  `json:"minimumDeposit"`
	MonthlyFee     *decimal.Decimal `json:"monthlyFee,omitempty"`
	Features       []string         `json:"features"`
}

func (i AccountTypeInfo) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ID, validation.Required),
		validation.Field(&i.Name, validation.Required),
	)
}

type CheckingAccountRequest struct {
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
}

func (r CheckingAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitialDeposit, validation.By(nonNegative)),
	)
}

type SavingsAccountRequest struct {
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	InterestRate   decimal.Decimal `json:"interestRate"`
}

func (r SavingsAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitialDeposit, validation.By(nonNegative)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
	)
}

type CDAccountRequest struct {
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	MaturityDate   Time            `json:"maturityDate"`
	AutoRenew      bool            `json:"autoRenew"`
}

func (r CDAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitialDeposit, validation.By(positive)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.MaturityDate, validation.By(setTime)),
	)
}

type MoneyMarketAccountRequest struct {
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	InterestRate   decimal.Decimal `json:"interestRate"`
}

func (r MoneyMarketAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitialDeposit, validation.By(nonNegative)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
	)
}

// ============================================================================
// Loans
// ============================================================================

type LoanType string

const (
	LoanMortgage             LoanType = "Mortgage"
	LoanAuto                 LoanType = "Auto"
	LoanCreditCard           LoanType = "CreditCard"
	LoanPersonal             LoanType = "Personal"
	LoanHELOC                LoanType = "HELOC"
	LoanPersonalLineOfCredit LoanType = "PersonalLineOfCredit"
)

var loanTypes = []any{LoanMortgage, LoanAuto, LoanCreditCard, LoanPersonal, LoanHELOC, LoanPersonalLineOfCredit}

// Revolving reports whether the product is a line of credit that can be
// drawn against.
func (t LoanType) Revolving() bool {
	switch t {
	case LoanCreditCard, LoanHELOC, LoanPersonalLineOfCredit:
		return true
	}
	return false
}

type LoanStatus string

const (
	LoanPending    LoanStatus = "Pending"
	LoanApproved   LoanStatus = "Approved"
	LoanActive     LoanStatus = "Active"
	LoanClosed     LoanStatus = "Closed"
	LoanDelinquent LoanStatus = "Delinquent"
)

var loanStatuses = []any{LoanPending, LoanApproved, LoanActive, LoanClosed, LoanDelinquent}

type Loan struct {
	ID              string           `json:"id"`
	AccountNumber   string           `json:"accountNumber"`
	Type            LoanType         `json:"type"`
	Status          LoanStatus       `json:"status"`
	Balance         decimal.Decimal  `json:"balance"`
	AvailableCredit *decimal.Decimal `json:"availableCredit,omitempty"`
	InterestRate    decimal.Decimal  `json:"interestRate"`
	PaymentAmount   decimal.Decimal  `json:"paymentAmount"`
	NextPaymentDue  Time             `json:"nextPaymentDue"`
	CreatedAt       Time             `json:"createdAt"`
	UpdatedAt       Time             `json:"updatedAt"`

	Principal        *decimal.Decimal `json:"principal,omitempty"`
	MaturityDate     *Time            `json:"maturityDate,omitempty"`
	LoanTermMonths   *int             `json:"loanTermMonths,omitempty"`
	CreditLimit      *decimal.Decimal `json:"creditLimit,omitempty"`
	DrawPeriodMonths *int             `json:"drawPeriodMonths,omitempty"`
	PropertyAddress  *string          `json:"propertyAddress,omitempty"`
	PropertyValue    *decimal.Decimal `json:"propertyValue,omitempty"`
	VehicleVIN       *string          `json:"vehicleVIN,omitempty"`
	RewardProgram    *string          `json:"rewardProgram,omitempty"`
	AnnualFee        *decimal.Decimal `json:"annualFee,omitempty"`
	IsSecured        *bool            `json:"isSecured,omitempty"`
}

func (l Loan) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.Type, validation.Required, validation.In(loanTypes...)),
		validation.Field(&l.Status, validation.Required, validation.In(loanStatuses...)),
	)
}

type MortgageLoanRequest struct {
	Principal       decimal.Decimal `json:"principal"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	LoanTermYears   int             `json:"loanTermYears"`
	PropertyAddress string          `json:"propertyAddress"`
}

func (r MortgageLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Principal, validation.By(positive)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.LoanTermYears, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&r.PropertyAddress, validation.Required),
	)
}

type AutoLoanRequest struct {
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	LoanTermMonths int             `json:"loanTermMonths"`
	VehicleVIN     string          `json:"vehicleVIN"`
}

func (r AutoLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Principal, validation.By(positive)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.LoanTermMonths, validation.Required, validation.Min(1), validation.Max(120)),
		validation.Field(&r.VehicleVIN, validation.Required, validation.Length(17, 17), is.Alphanumeric),
	)
}

type CreditCardRequest struct {
	InterestRate  decimal.Decimal `json:"interestRate"`
	CreditLimit   decimal.Decimal `json:"creditLimit"`
	AnnualFee     decimal.Decimal `json:"annualFee"`
	RewardProgram string          `json:"rewardProgram"`
}

func (r CreditCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.CreditLimit, validation.By(positive)),
		validation.Field(&r.AnnualFee, validation.By(nonNegative)),
		validation.Field(&r.RewardProgram, validation.Required),
	)
}

type PersonalLoanRequest struct {
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	Purpose        string          `json:"purpose"`
	LoanTermMonths int             `json:"loanTermMonths"`
	IsSecured      bool            `json:"isSecured"`
}

func (r PersonalLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Principal, validation.By(positive)),
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.Purpose, validation.Required),
		validation.Field(&r.LoanTermMonths, validation.Required, validation.Min(1), validation.Max(120)),
	)
}

type HELOCRequest struct {
	InterestRate     decimal.Decimal `json:"interestRate"`
	PropertyAddress  string          `json:"propertyAddress"`
	PropertyValue    decimal.Decimal `json:"propertyValue"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	CurrentEquity    decimal.Decimal `json:"currentEquity"`
	DrawPeriodMonths int             `json:"drawPeriodMonths"`
}

func (r HELOCRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.PropertyAddress, validation.Required),
		validation.Field(&r.PropertyValue, validation.By(positive)),
		validation.Field(&r.CreditLimit, validation.By(positive), validation.By(atMost(r.CurrentEquity, "current equity"))),
		validation.Field(&r.CurrentEquity, validation.By(positive), validation.By(atMost(r.PropertyValue, "property value"))),
		validation.Field(&r.DrawPeriodMonths, validation.Required, validation.Min(1), validation.Max(360)),
	)
}

type PersonalLineOfCreditRequest struct {
	InterestRate     decimal.Decimal `json:"interestRate"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	DrawPeriodMonths int             `json:"drawPeriodMonths"`
	IsSecured        bool            `json:"isSecured"`
}

func (r PersonalLineOfCreditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InterestRate, validation.By(percentRate)),
		validation.Field(&r.CreditLimit, validation.By(positive)),
		validation.Field(&r.DrawPeriodMonths, validation.Required, validation.Min(1), validation.Max(360)),
	)
}

// ============================================================================
// Transactions
// ============================================================================

// TransactionType is encoded as a JSON integer.
type TransactionType int

const (
	TransactionTransfer    TransactionType = 0
	TransactionLoanPayment TransactionType = 1
	TransactionLoanAdvance TransactionType = 2
)

var transactionTypes = []any{TransactionTransfer, TransactionLoanPayment, TransactionLoanAdvance}

func (t TransactionType) String() string {
	switch t {
	case TransactionTransfer:
		return "Transfer"
	case TransactionLoanPayment:
		return "LoanPayment"
	case TransactionLoanAdvance:
		return "LoanAdvance"
	default:
		return "Unknown"
	}
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "Pending"
	TransactionCompleted TransactionStatus = "Completed"
	TransactionFailed    TransactionStatus = "Failed"
	TransactionCanceled  TransactionStatus = "Canceled"
)

var transactionStatuses = []any{TransactionPending, TransactionCompleted, TransactionFailed, TransactionCanceled}

type Transaction struct {
	ID                     string            `json:"id"`
	Type                   TransactionType   `json:"type"`
	Amount                 decimal.Decimal   `json:"amount"`
	Description            *string           `json:"description,omitempty"`
	SourceAccountID        string            `json:"sourceAccountId"`
	SourceAccountName      string            `json:"sourceAccountName"`
	DestinationAccountID   string            `json:"destinationAccountId"`
	DestinationAccountName string            `json:"destinationAccountName"`
	Status                 TransactionStatus `json:"status"`
	CreatedAt              Time              `json:"createdAt"`
	UpdatedAt              Time              `json:"updatedAt"`
}

func (t Transaction) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Type, validation.In(transactionTypes...)),
		validation.Field(&t.Status, validation.Required, validation.In(transactionStatuses...)),
	)
}

// TransactionRequest moves money. For a loan payment the destination is the
// loan id; for a loan advance the source is.
type TransactionRequest struct {
	Type                 TransactionType `json:"type"`
	SourceAccountID      string          `json:"sourceAccountId"`
	DestinationAccountID string          `json:"destinationAccountId"`
	Amount               decimal.Decimal `json:"amount"`
	Description          *string         `json:"description,omitempty"`
}

func (r TransactionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.In(transactionTypes...)),
		validation.Field(&r.SourceAccountID, validation.Required),
		validation.Field(&r.DestinationAccountID, validation.Required,
			validation.NotIn(r.SourceAccountID).Error("must differ from the source account")),
		validation.Field(&r.Amount, validation.By(positive)),
		validation.Field(&r.Description, validation.Length(0, 200)),
	)
}

// ============================================================================
// Validation rules
// ============================================================================

func decimalValue(v any) (decimal.Decimal, bool) {
	switch d := v.(type) {
	case decimal.Decimal:
		return d, true
	case *decimal.Decimal:
		if d == nil {
			return decimal.Decimal{}, false
		}
		return *d, true
	}
	return decimal.Decimal{}, false
}

func positive(v any) error {
	if d, ok := decimalValue(v); ok && !d.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

func nonNegative(v any) error {
	if d, ok := decimalValue(v); ok && d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

var maxRate = decimal.NewFromInt(100)

// percentRate accepts a percentage between 0 and 100.
func percentRate(v any) error {
	if d, ok := decimalValue(v); ok && (d.IsNegative() || d.GreaterThan(maxRate)) {
		return errors.New("must be a percentage between 0 and 100")
	}
	return nil
}

func atMost(limit decimal.Decimal, what string) validation.RuleFunc {
	return func(v any) error {
		if d, ok := decimalValue(v); ok && d.GreaterThan(limit) {
			return errors.New("must not exceed " + what)
		}
		return nil
	}
}

func setTime(v any) error {
	if t, ok := v.(Time); ok && t.IsZero() {
		return errors.New("is required")
	}
	return nil
}

func matches(want string) validation.RuleFunc {
	return func(v any) error {
		if s, _ := v.(string); s != want {
			return errors.New("does not match")
		}
		return nil
	}
}
