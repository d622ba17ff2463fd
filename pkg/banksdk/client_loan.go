package banksdk

import "context"

func (c *Client) ApplyForMortgage(ctx context.Context, req MortgageLoanRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForMortgage, req)
}

func (c *Client) ApplyForAutoLoan(ctx context.Context, req AutoLoanRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForAutoLoan, req)
}

func (c *Client) ApplyForCreditCard(ctx context.Context, req CreditCardRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForCreditCard, req)
}

func (c *Client) ApplyForPersonalLoan(ctx context.Context, req PersonalLoanRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForPersonalLoan, req)
}

func (c *Client) ApplyForHELOC(ctx context.Context, req HELOCRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForHELOC, req)
}

func (c *Client) ApplyForPersonalLineOfCredit(ctx context.Context, req PersonalLineOfCreditRequest) (Loan, error) {
	return execute[Loan](ctx, c, EndpointApplyForPersonalLineOfCredit, req)
}
