package http

import (
	"net/http"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
)

// LoanHandler serves loan applications. Every valid application is approved
// on the spot.
type LoanHandler struct {
	LoanService *service.LoanService
}

// HandleMortgage handles POST /api/v1/loans/mortgage
//
//	@Summary	Apply for a mortgage
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.MortgageLoanRequest	true	"Application"
//	@Success	201		{object}	banksdk.Loan				"The approved loan"
//	@Failure	400		{object}	httpx.MessageResponse		"message"
//	@Router		/api/v1/loans/mortgage [post].
func (h *LoanHandler) HandleMortgage(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForMortgage, domain.Loan.ToAPI)
}

// HandleAuto handles POST /api/v1/loans/auto
//
//	@Summary	Apply for an auto loan
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.AutoLoanRequest	true	"Application"
//	@Success	201		{object}	banksdk.Loan			"The approved loan"
//	@Failure	400		{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/loans/auto [post].
func (h *LoanHandler) HandleAuto(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForAutoLoan, domain.Loan.ToAPI)
}

// HandleCreditCard handles POST /api/v1/loans/credit-card
//
//	@Summary	Apply for a credit card
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.CreditCardRequest	true	"Application"
//	@Success	201		{object}	banksdk.Loan				"The approved card"
//	@Failure	400		{object}	httpx.MessageResponse		"message"
//	@Router		/api/v1/loans/credit-card [post].
func (h *LoanHandler) HandleCreditCard(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForCreditCard, domain.Loan.ToAPI)
}

// HandlePersonal handles POST /api/v1/loans/personal
//
//	@Summary	Apply for a personal loan
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.PersonalLoanRequest	true	"Application"
//	@Success	201		{object}	banksdk.Loan				"The approved loan"
//	@Failure	400		{object}	httpx.MessageResponse		"message"
//	@Router		/api/v1/loans/personal [post].
func (h *LoanHandler) HandlePersonal(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForPersonalLoan, domain.Loan.ToAPI)
}

// HandleHELOC handles POST /api/v1/loans/heloc
//
//	@Summary		Apply for a home equity line of credit
//	@Description	The limit may not exceed the current equity.
//	@Tags			Loans
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		banksdk.HELOCRequest	true	"Application"
//	@Success		201		{object}	banksdk.Loan			"The approved line"
//	@Failure		400		{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/loans/heloc [post].
func (h *LoanHandler) HandleHELOC(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForHELOC, domain.Loan.ToAPI)
}

// HandlePersonalLineOfCredit handles POST /api/v1/loans/personal-line-of-credit
//
//	@Summary	Apply for a personal line of credit
//	@Tags		Loans
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		banksdk.PersonalLineOfCreditRequest	true	"Application"
//	@Success	201		{object}	banksdk.Loan						"The approved line"
//	@Failure	400		{object}	httpx.MessageResponse				"message"
//	@Router		/api/v1/loans/personal-line-of-credit [post].
func (h *LoanHandler) HandlePersonalLineOfCredit(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.LoanService.ApplyForPersonalLineOfCredit, domain.Loan.ToAPI)
}
