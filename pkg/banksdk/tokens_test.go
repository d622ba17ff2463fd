package banksdk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("keychain locked")

func (brokenStore) Get(context.Context, string) (string, error)     { return "", errBroken }
func (brokenStore) Set(context.Context, string, string) error       { return errBroken }
func (brokenStore) Delete(context.Context, string) error            { return errBroken }
func (brokenStore) SetAll(context.Context, map[string]string) error { return errBroken }
func (brokenStore) DeleteAll(context.Context, ...string) error      { return errBroken }

func TestTokenManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := banksdk.NewMemoryStore()
	tm := banksdk.NewTokenManager(store, slogx.Discard())

	_, ok := tm.Credentials(ctx)
	require.False(t, ok)

	expires := banksdk.NewTime(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, tm.Save(ctx, banksdk.Credentials{AccessToken: "a", RefreshToken: "r", ExpiresAt: &expires}))

	creds, ok := tm.Credentials(ctx)
	require.True(t, ok)
	require.Equal(t, "a", creds.AccessToken)
	require.Equal(t, "r", creds.RefreshToken)
	require.True(t, expires.Equal(creds.ExpiresAt.Time))

	raw, err := store.Get(ctx, banksdk.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "a", raw)

	// A refresh without expiry must not leave the old one behind.
	require.NoError(t, tm.Save(ctx, banksdk.Credentials{AccessToken: "a2", RefreshToken: "r2"}))
	creds, _ = tm.Credentials(ctx)
	require.Nil(t, creds.ExpiresAt)

	require.NoError(t, tm.Clear(ctx))
	require.Empty(t, tm.AccessToken(ctx))
	require.Empty(t, tm.RefreshToken(ctx))
}

func TestReadFailureIsAbsent(t *testing.T) {
	ctx := context.Background()
	c, err := banksdk.New(banksdk.Config{Store: brokenStore{}, Logger: slogx.Discard()})
	require.NoError(t, err)

	require.False(t, c.IsAuthenticated(ctx))

	_, err = c.GetAllAccounts(ctx)
	require.ErrorIs(t, err, banksdk.ErrUnauthorized)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := banksdk.NewMemoryStore()

	v, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.SetAll(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.DeleteAll(ctx, "a"))

	v, _ = s.Get(ctx, "b")
	require.Equal(t, "2", v)
	v, _ = s.Get(ctx, "a")
	require.Empty(t, v)
}
