package banksdk

import (
	"context"
	"strings"
)

func (c *Client) GetAllAccounts(ctx context.Context) ([]Account, error) {
	return execute[[]Account](ctx, c, EndpointGetAllAccounts, nil)
}

func (c *Client) GetAccountTypes(ctx context.Context) ([]AccountTypeInfo, error) {
	return execute[[]AccountTypeInfo](ctx, c, EndpointGetAccountTypes, nil)
}

// GetAccount fetches one account. An empty id is rejected before any
// request is made.
func (c *Client) GetAccount(ctx context.Context, id string) (Account, error) {
	if strings.TrimSpace(id) == "" {
		return Account{}, Custom("account id is required")
	}
	return execute[Account](ctx, c, EndpointGetAccount.With(id), nil)
}

func (c *Client) CreateCheckingAccount(ctx context.Context, req CheckingAccountRequest) (Account, error) {
	return execute[Account](ctx, c, EndpointCreateCheckingAccount, req)
}

func (c *Client) CreateSavingsAccount(ctx context.Context, req SavingsAccountRequest) (Account, error) {
	return execute[Account](ctx, c, EndpointCreateSavingsAccount, req)
}

func (c *Client) CreateCDAccount(ctx context.Context, req CDAccountRequest) (Account, error) {
	return execute[Account](ctx, c, EndpointCreateCDAccount, req)
}

func (c *Client) CreateMoneyMarketAccount(ctx context.Context, req MoneyMarketAccountRequest) (Account, error) {
	return execute[Account](ctx, c, EndpointCreateMoneyMarketAccount, req)
}
