package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("test-master-key-for-encryption-12345"))
	require.NoError(t, err)

	secret := []byte("eyJhbGciOiJFZERTQSJ9.refresh-me")

	sealed, err := s.Seal(secret)
	require.NoError(t, err)
	require.NotEqual(t, secret, sealed)

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, secret, opened)
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("nonce-key"))
	require.NoError(t, err)

	a, err := s.SealString("same")
	require.NoError(t, err)
	b, err := s.SealString("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	for _, enc := range []string{a, b} {
		plain, err := s.OpenString(enc)
		require.NoError(t, err)
		require.Equal(t, "same", plain)
	}
}

func TestOpenFailures(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("key-one"))
	require.NoError(t, err)
	other, err := cryptox.NewSealer([]byte("key-two"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		sealed, err := s.Seal([]byte("data"))
		require.NoError(t, err)

		_, err = other.Open(sealed)
		require.Error(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		sealed, err := s.Seal([]byte("data"))
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = s.Open(sealed)
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := s.Open([]byte{1, 2, 3})
		require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := s.OpenString("%%%")
		require.Error(t, err)
	})
}

func TestNewSealerRejectsEmptyKey(t *testing.T) {
	_, err := cryptox.NewSealer(nil)
	require.Error(t, err)
}

func TestLoadOrCreateKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "master.key")

	first, err := cryptox.LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := cryptox.LoadOrCreateKeyFile(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
