package banksdk

import (
	"context"
	"errors"
	"strconv"
)

// Register creates a member. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := execute[Empty](ctx, c, EndpointRegister, req)
	return err
}

// Login signs in and stores the returned token pair. A rejected login gets
// the one refresh every 401 gets, so a stored pair may be rotated even though
// the login itself fails.
func (c *Client) Login(ctx context.Context, email, password string) error {
	res, err := execute[AuthResponse](ctx, c, EndpointLogin, LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	expires := res.ExpiresAt
	creds := Credentials{AccessToken: res.Token, RefreshToken: res.RefreshToken}
	if !expires.IsZero() {
		creds.ExpiresAt = &expires
	}
	if err := c.tokens.Save(ctx, creds); err != nil {
		return &Error{Kind: KindCustom, Message: "could not store credentials", Err: err}
	}

	c.log.Info("signed in")
	return nil
}

// Logout ends the server session and clears local tokens. By default the
// tokens are cleared even when the server call fails; with StrictLogout
// they are only cleared after the server confirms. The server's error is
// returned either way.
func (c *Client) Logout(ctx context.Context) error {
	_, remoteErr := execute[Empty](ctx, c, EndpointLogout, nil)
	if remoteErr != nil && c.strictLogout {
		return remoteErr
	}

	if err := c.tokens.Clear(ctx); err != nil {
		return errors.Join(remoteErr, &Error{Kind: KindCustom, Message: "could not clear credentials", Err: err})
	}
	if remoteErr != nil {
		c.log.Warn("signed out locally, server logout failed", "err", remoteErr)
		return remoteErr
	}

	c.log.Info("signed out")
	return nil
}

// Refresh trades the stored refresh token for a new pair. Concurrent
// callers share one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do(refreshKey, func() (any, error) {
		return nil, c.refresh(context.WithoutCancel(ctx))
	})
	return err
}

// refresh does the exchange. Every failure is KindUnauthorized and leaves
// the stored pair as it was.
func (c *Client) refresh(ctx context.Context) error {
	rt := c.tokens.RefreshToken(ctx)
	if rt == "" {
		return &Error{Kind: KindUnauthorized, Message: "no refresh token"}
	}

	res, err := execute[TokenResponse](ctx, c, EndpointRefreshToken, RefreshTokenRequest{RefreshToken: rt})
	if err != nil {
		c.log.Warn("token refresh failed", "err", err)
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return &Error{Kind: KindUnauthorized, Message: "token refresh failed", Err: err}
	}

	creds := Credentials{
		AccessToken:  res.Token,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
	}
	if err := c.tokens.Save(ctx, creds); err != nil {
		return &Error{Kind: KindUnauthorized, Message: "could not store refreshed credentials", Err: err}
	}

	c.log.Debug("token refreshed")
	return nil
}

// ActiveSessions lists the member's signed-in devices.
func (c *Client) ActiveSessions(ctx context.Context) ([]ActiveSession, error) {
	return execute[[]ActiveSession](ctx, c, EndpointActiveSessions, nil)
}

// RevokeSession signs out one device.
func (c *Client) RevokeSession(ctx context.Context, id int) error {
	_, err := execute[Empty](ctx, c, EndpointRevokeSession.With(strconv.Itoa(id)), nil)
	return err
}

// RevokeAllSessions signs out every device, this one included, and clears
// local tokens on success.
func (c *Client) RevokeAllSessions(ctx context.Context) error {
	if _, err := execute[Empty](ctx, c, EndpointRevokeAllSessions, nil); err != nil {
		return err
	}
	if err := c.tokens.Clear(ctx); err != nil {
		return &Error{Kind: KindCustom, Message: "could not clear credentials", Err: err}
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored. It says
// nothing about whether the server still accepts it.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.tokens.AccessToken(ctx) != ""
}

// Credentials returns a snapshot of the stored pair.
func (c *Client) Credentials(ctx context.Context) (Credentials, bool) {
	return c.tokens.Credentials(ctx)
}
