package http

import (
	"net/http"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
)

// AccountHandler serves deposit accounts and the product catalogue.
type AccountHandler struct {
	AccountService *service.AccountService
}

// HandleList handles GET /api/v1/accounts
//
//	@Summary	List accounts
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		banksdk.Account			"The member's accounts, oldest first"
//	@Failure	401	{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/accounts [get].
func (h *AccountHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	accounts, err := h.AccountService.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPI(accounts, domain.Account.ToAPI))
}

// HandleTypes handles GET /api/v1/accounts/types
//
//	@Summary	List account products
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		banksdk.AccountTypeInfo	"Products with minimum deposits and fees"
//	@Failure	401	{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/accounts/types [get].
func (h *AccountHandler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	products, err := h.AccountService.Products(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPI(products, domain.AccountProduct.ToAPI))
}

// HandleGet handles GET /api/v1/accounts/{id}
//
//	@Summary	Get account
//	@Tags		Accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string					true	"Account id"
//	@Success	200	{object}	banksdk.Account			"The account"
//	@Failure	401	{object}	httpx.MessageResponse	"message"
//	@Failure	404	{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/accounts/{id} [get].
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	a, err := h.AccountService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a.ToAPI())
}

// HandleOpenChecking handles POST /api/v1/accounts/checking
//
//	@Summary	Open a checking account
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.CheckingAccountRequest	true	"Opening deposit"
//	@Success	201		{object}	banksdk.Account					"The new account"
//	@Failure	400		{object}	httpx.MessageResponse			"message"
//	@Router		/api/v1/accounts/checking [post].
func (h *AccountHandler) HandleOpenChecking(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.AccountService.OpenChecking, domain.Account.ToAPI)
}

// HandleOpenSavings handles POST /api/v1/accounts/savings
//
//	@Summary	Open a savings account
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.SavingsAccountRequest	true	"Opening deposit and rate"
//	@Success	201		{object}	banksdk.Account					"The new account"
//	@Failure	400		{object}	httpx.MessageResponse			"message"
//	@Router		/api/v1/accounts/savings [post].
func (h *AccountHandler) HandleOpenSavings(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.AccountService.OpenSavings, domain.Account.ToAPI)
}

// HandleOpenCD handles POST /api/v1/accounts/cd
//
//	@Summary		Open a certificate of deposit
//	@Description	Funds are locked until the maturity date.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		banksdk.CDAccountRequest	true	"Deposit, rate and maturity"
//	@Success		201		{object}	banksdk.Account				"The new account"
//	@Failure		400		{object}	httpx.MessageResponse		"message"
//	@Router			/api/v1/accounts/cd [post].
func (h *AccountHandler) HandleOpenCD(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.AccountService.OpenCD, domain.Account.ToAPI)
}

// HandleOpenMoneyMarket handles POST /api/v1/accounts/money-market
//
//	@Summary	Open a money market account
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.MoneyMarketAccountRequest	true	"Opening deposit and rate"
//	@Success	201		{object}	banksdk.Account						"The new account"
//	@Failure	400		{object}	httpx.MessageResponse				"message"
//	@Router		/api/v1/accounts/money-market [post].
func (h *AccountHandler) HandleOpenMoneyMarket(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.AccountService.OpenMoneyMarket, domain.Account.ToAPI)
}
