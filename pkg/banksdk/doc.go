/*
Package banksdk is the client for the Aspen Credit Union REST API.

# Overview

A Client issues one HTTP request per operation against the versioned API
prefix, attaches the member's bearer token, and maps every outcome onto a
typed *Error. Tokens live in a CredentialStore owned by the client; the
store is the only state shared between calls.

	store := banksdk.NewMemoryStore()
	client, err := banksdk.New(banksdk.Config{
		Environment: banksdk.EnvLocal,
		Store:       store,
	})
	if err != nil {
		return err
	}

	if err := client.Login(ctx, "ada@example.com", "correct horse"); err != nil {
		return err
	}

	accounts, err := client.GetAllAccounts(ctx)

# Token refresh

When an authenticated call comes back 401 the client exchanges the stored
refresh token for a new pair and resends the request exactly once. Refreshes
are single-flight: concurrent calls that hit 401 together share one refresh,
and a call whose token was already replaced by another goroutine just
retries with the new one. A second 401 after the retry, or any refresh
failure, surfaces as ErrUnauthorized.

# Errors

Every failure is an *Error. Match the kind with errors.Is:

	_, err := client.GetAccount(ctx, id)
	switch {
	case errors.Is(err, banksdk.ErrUnauthorized):
		// log in again
	case errors.Is(err, banksdk.ErrServerError):
		var apiErr *banksdk.Error
		errors.As(err, &apiErr)
		fmt.Println(apiErr.StatusCode, apiErr.Message)
	}

# Wire format

Bodies are JSON. Timestamps use Time, which encodes UTC with seven
fractional digits and refuses anything else on decode. Money is
decimal.Decimal written as a JSON number. Response fields without
omitempty are required; a missing or null one is ErrDecodingFailed.
*/
package banksdk
