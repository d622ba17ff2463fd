package credstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/credstore"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T, key string) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte(key))
	require.NoError(t, err)
	return s
}

func openStore(t *testing.T, path, key string) *credstore.SQLiteStore {
	t.Helper()
	s, err := credstore.Open(path, newSealer(t, key))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreBasics(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, filepath.Join(t.TempDir(), "creds.db"), "master")

	v, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	require.NoError(t, s.SetAll(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, s.DeleteAll(ctx, "a", "k"))
	for key, want := range map[string]string{"a": "", "b": "2", "k": ""} {
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, want, got, key)
	}

	require.NoError(t, s.Delete(ctx, "b"))
	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "creds.db")

	first, err := credstore.Open(path, newSealer(t, "master"))
	require.NoError(t, err)
	tm := banksdk.NewTokenManager(first, slogx.Discard())
	require.NoError(t, tm.Save(ctx, banksdk.Credentials{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	require.NoError(t, first.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := openStore(t, path, "master")
	creds, ok := banksdk.NewTokenManager(second, slogx.Discard()).Credentials(ctx)
	require.True(t, ok)
	require.Equal(t, "access-1", creds.AccessToken)
	require.Equal(t, "refresh-1", creds.RefreshToken)
}

func TestSQLiteStoreIsEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	s := openStore(t, path, "master")
	require.NoError(t, s.Set(ctx, banksdk.KeyAccessToken, "super-secret-token"))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "super-secret-token"))

	wrongKey := openStore(t, path, "not-the-master")
	_, err = wrongKey.Get(ctx, banksdk.KeyAccessToken)
	require.Error(t, err)

	// The token manager treats an unreadable value as signed out.
	tm := banksdk.NewTokenManager(wrongKey, slogx.Discard())
	require.Empty(t, tm.AccessToken(ctx))
}

func TestOpenRequiresSealer(t *testing.T) {
	_, err := credstore.Open(filepath.Join(t.TempDir(), "creds.db"), nil)
	require.Error(t, err)
}
