package bank_test

import (
	"testing"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/stretchr/testify/require"
)

// TestRevokedDeviceIsSignedOut signs in on two devices and revokes one from
// the other.
func TestRevokedDeviceIsSignedOut(t *testing.T) {
	baseURL := setupBankContainer(t)
	ctx := t.Context()

	laptop := newClient(t, baseURL, "Laptop")
	registerMember(t, laptop, "barbara@example.com")

	phone := newClient(t, baseURL, "Phone")
	require.NoError(t, phone.Login(ctx, "barbara@example.com", memberPassword))

	sessions, err := laptop.ActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var phoneSession int
	for _, s := range sessions {
		if s.DeviceName == "Phone" {
			require.False(t, s.IsCurrentSession)
			phoneSession = s.ID
		}
	}
	require.NotZero(t, phoneSession)

	require.NoError(t, laptop.RevokeSession(ctx, phoneSession))

	_, err = phone.GetProfile(ctx)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized)

	_, err = laptop.GetProfile(ctx)
	require.NoError(t, err)
}

// TestRefreshRotatesTokens checks the stored pair changes and the old
// refresh token stops working.
func TestRefreshRotatesTokens(t *testing.T) {
	baseURL := setupBankContainer(t)
	ctx := t.Context()

	c := newClient(t, baseURL, "e2e")
	registerMember(t, c, "alan@example.com")

	before, ok := c.Credentials(ctx)
	require.True(t, ok)

	require.NoError(t, c.Refresh(ctx))

	after, ok := c.Credentials(ctx)
	require.True(t, ok)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.NotEqual(t, before.AccessToken, after.AccessToken)

	_, err := c.GetAllAccounts(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	require.False(t, c.IsAuthenticated(ctx))
}
