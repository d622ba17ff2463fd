package service

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrSessionRevoked     = errors.New("session is no longer active")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrLoanNotFound    = errors.New("loan not found")

	ErrBelowMinimumDeposit = errors.New("initial deposit is below the minimum")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientCredit  = errors.New("insufficient available credit")
	ErrNotRevolving        = errors.New("loan does not allow advances")
	ErrLoanNotActive       = errors.New("loan is not active")
	ErrOverpayment         = errors.New("payment exceeds the loan balance")
	ErrNotMatured          = errors.New("certificate has not matured")
)

// ValidationError carries a request that failed validation. Its message is
// returned to the member as is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func validate(v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrInvalidRefresh, http.StatusUnauthorized},
	{ErrSessionRevoked, http.StatusUnauthorized},
	{ErrEmailTaken, http.StatusConflict},
	{ErrWrongPassword, http.StatusBadRequest},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrSessionNotFound, http.StatusNotFound},
	{ErrAccountNotFound, http.StatusNotFound},
	{ErrLoanNotFound, http.StatusNotFound},
	{ErrBelowMinimumDeposit, http.StatusBadRequest},
	{ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{ErrInsufficientCredit, http.StatusUnprocessableEntity},
	{ErrNotRevolving, http.StatusBadRequest},
	{ErrLoanNotActive, http.StatusConflict},
	{ErrOverpayment, http.StatusBadRequest},
	{ErrNotMatured, http.StatusConflict},
}

// ToBankError maps a service error to the response the member sees. Known
// failures keep their message; anything else becomes a bare 500 so internal
// details never leak.
func ToBankError(err error) *banksdk.Error {
	var be *banksdk.Error
	if errors.As(err, &be) {
		return be
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return banksdk.ServerError(http.StatusBadRequest, ve.Error())
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return banksdk.ServerError(s.status, err.Error())
		}
	}
	return banksdk.ServerError(http.StatusInternalServerError, "internal server error")
}
