package banksdk

import (
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one remote operation.
type Endpoint struct {
	Name         string
	Path         string
	Method       string
	RequiresAuth bool
}

// pathParam is the placeholder filled by With.
const pathParam = "{id}"

// With returns a copy of e with the {id} placeholder replaced by the
// escaped value.
func (e Endpoint) With(id string) Endpoint {
	e.Path = strings.Replace(e.Path, pathParam, url.PathEscape(id), 1)
	return e
}

var (
	EndpointRegister          = Endpoint{"register", "/auth/register", http.MethodPost, false}
	EndpointLogin             = Endpoint{"login", "/auth/login", http.MethodPost, false}
	EndpointRefreshToken      = Endpoint{"refreshToken", "/auth/refresh-token", http.MethodPost, false}
	EndpointLogout            = Endpoint{"logout", "/auth/logout", http.MethodPost, true}
	EndpointActiveSessions    = Endpoint{"activeSessions", "/auth/active-sessions", http.MethodGet, true}
	EndpointRevokeSession     = Endpoint{"revokeSession", "/auth/revoke-session/{id}", http.MethodPost, true}
	EndpointRevokeAllSessions = Endpoint{"revokeAllSessions", "/auth/revoke-all-sessions", http.MethodPost, true}

	EndpointGetProfile     = Endpoint{"getProfile", "/user/profile", http.MethodGet, true}
	EndpointUpdateProfile  = Endpoint{"updateProfile", "/user/profile", http.MethodPut, true}
	EndpointChangePassword = Endpoint{"changePassword", "/user/change-password", http.MethodPut, true}

	EndpointGetAllAccounts           = Endpoint{"getAllAccounts", "/accounts", http.MethodGet, true}
	EndpointGetAccountTypes          = Endpoint{"getAccountTypes", "/accounts/types", http.MethodGet, true}
	EndpointGetAccount               = Endpoint{"getAccount", "/accounts/{id}", http.MethodGet, true}
	EndpointCreateCheckingAccount    = Endpoint{"createCheckingAccount", "/accounts/checking", http.MethodPost, true}
	EndpointCreateSavingsAccount     = Endpoint{"createSavingsAccount", "/accounts/savings", http.MethodPost, true}
	EndpointCreateCDAccount          = Endpoint{"createCDAccount", "/accounts/cd", http.MethodPost, true}
	EndpointCreateMoneyMarketAccount = Endpoint{"createMoneyMarketAccount", "/accounts/money-market", http.MethodPost, true}

	EndpointApplyForMortgage             = Endpoint{"applyForMortgage", "/loans/mortgage", http.MethodPost, true}
	EndpointApplyForAutoLoan             = Endpoint{"applyForAutoLoan", "/loans/auto", http.MethodPost, true}
	EndpointApplyForCreditCard           = Endpoint{"applyForCreditCard", "/loans/credit-card", http.MethodPost, true}
	EndpointApplyForPersonalLoan         = Endpoint{"applyForPersonalLoan", "/loans/personal", http.MethodPost, true}
	EndpointApplyForHELOC                = Endpoint{"applyForHELOC", "/loans/heloc", http.MethodPost, true}
	EndpointApplyForPersonalLineOfCredit = Endpoint{"applyForPersonalLineOfCredit", "/loans/personal-line-of-credit", http.MethodPost, true}

	EndpointGetTransactionHistory = Endpoint{"getTransactionHistory", "/transactions/history", http.MethodGet, true}
	EndpointCreateTransaction     = Endpoint{"createTransaction", "/transactions", http.MethodPost, true}
)

// Catalog lists every endpoint the API exposes.
func Catalog() []Endpoint {
	return []Endpoint{
		EndpointRegister,
		EndpointLogin,
		EndpointRefreshToken,
		EndpointLogout,
		EndpointActiveSessions,
		EndpointRevokeSession,
		EndpointRevokeAllSessions,
		EndpointGetProfile,
		EndpointUpdateProfile,
		EndpointChangePassword,
		EndpointGetAllAccounts,
		EndpointGetAccountTypes,
		EndpointGetAccount,
		EndpointCreateCheckingAccount,
		EndpointCreateSavingsAccount,
		EndpointCreateCDAccount,
		EndpointCreateMoneyMarketAccount,
		EndpointApplyForMortgage,
		EndpointApplyForAutoLoan,
		EndpointApplyForCreditCard,
		EndpointApplyForPersonalLoan,
		EndpointApplyForHELOC,
		EndpointApplyForPersonalLineOfCredit,
		EndpointGetTransactionHistory,
		EndpointCreateTransaction,
	}
}

// isRefresh reports whether e is the token refresh call, whose 401 is never
// retried.
func (e Endpoint) isRefresh() bool {
	return e.Name == EndpointRefreshToken.Name && e.Path == EndpointRefreshToken.Path
}

func (e Endpoint) validMethod() bool {
	switch e.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
		return true
	}
	return false
}
