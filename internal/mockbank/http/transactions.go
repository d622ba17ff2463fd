package http

import (
	"net/http"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
)

type TransactionHandler struct {
	TransactionService *service.TransactionService
}

// HandleHistory handles GET /api/v1/transactions/history
//
//	@Summary	Transaction history
//	@Tags		Transactions
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		banksdk.Transaction		"Newest first"
//	@Failure	401	{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/transactions/history [get].
func (h *TransactionHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	txns, err := h.TransactionService.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPI(txns, domain.Transaction.ToAPI))
}

// HandleCreate handles POST /api/v1/transactions
//
//	@Summary		Move money
//	@Description	type 0 transfers between accounts, 1 pays a loan from an account, 2 draws on a line of credit into an account.
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		banksdk.TransactionRequest	true	"Movement"
//	@Success		201		{object}	banksdk.Transaction			"The completed transaction"
//	@Failure		400		{object}	httpx.MessageResponse		"message"
//	@Failure		404		{object}	httpx.MessageResponse		"message"
//	@Failure		409		{object}	httpx.MessageResponse		"message"
//	@Failure		422		{object}	httpx.MessageResponse		"message"
//	@Router			/api/v1/transactions [post].
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	create(w, r, h.TransactionService.Create, domain.Transaction.ToAPI)
}
