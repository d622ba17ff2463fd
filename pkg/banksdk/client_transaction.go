package banksdk

import (
	"context"

	"github.com/shopspring/decimal"
)

func (c *Client) GetTransactionHistory(ctx context.Context) ([]Transaction, error) {
	return execute[[]Transaction](ctx, c, EndpointGetTransactionHistory, nil)
}

// TransferBetweenAccounts moves amount between two of the member's
// accounts.
func (c *Client) TransferBetweenAccounts(ctx context.Context, sourceID, destinationID string, amount decimal.Decimal, description *string) (Transaction, error) {
	return c.createTransaction(ctx, TransactionRequest{
		Type:                 TransactionTransfer,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Description:          description,
	})
}

// MakeLoanPayment pays amount from an account into a loan.
func (c *Client) MakeLoanPayment(ctx context.Context, sourceID, loanID string, amount decimal.Decimal, description *string) (Transaction, error) {
	return c.createTransaction(ctx, TransactionRequest{
		Type:                 TransactionLoanPayment,
		SourceAccountID:      sourceID,
		DestinationAccountID: loanID,
		Amount:               amount,
		Description:          description,
	})
}

// RequestLoanAdvance draws amount from a line of credit into an account.
func (c *Client) RequestLoanAdvance(ctx context.Context, loanID, destinationID string, amount decimal.Decimal, description *string) (Transaction, error) {
	return c.createTransaction(ctx, TransactionRequest{
		Type:                 TransactionLoanAdvance,
		SourceAccountID:      loanID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Description:          description,
	})
}

func (c *Client) createTransaction(ctx context.Context, req TransactionRequest) (Transaction, error) {
	return execute[Transaction](ctx, c, EndpointCreateTransaction, req)
}
