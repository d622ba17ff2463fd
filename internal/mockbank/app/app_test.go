package app

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"MOCKBANK_ISSUER", "MOCKBANK_DATABASE_FILE", "PORT", "MOCKBANK_SEED_DEMO", "MOCKBANK_ACCESS_TTL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "aspen-mockbank", cfg.Issuer)
	require.Equal(t, "mockbank.db", cfg.DatabaseFile)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.False(t, cfg.SeedDemo)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MOCKBANK_ISSUER", "test-bank")
	t.Setenv("PORT", "9000")
	t.Setenv("MOCKBANK_SEED_DEMO", "true")
	t.Setenv("MOCKBANK_ACCESS_TTL", "90s")
	t.Setenv("HOUSEKEEPING_INTERVAL", "5")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "not-a-duration")

	cfg := LoadConfig()
	require.Equal(t, "test-bank", cfg.Issuer)
	require.Equal(t, 9000, cfg.Port)
	require.True(t, cfg.SeedDemo)
	require.Equal(t, 90*time.Second, cfg.AccessTTL)
	require.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestSigningKeyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "signing.pem")
	cfg := Config{SigningKeyFile: path}

	s1, _, err := InitSigningKeys(cfg, slogx.Discard())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s2, keys, err := InitSigningKeys(cfg, slogx.Discard())
	require.NoError(t, err)
	require.Equal(t, s1.PublicJWK(), s2.PublicJWK())
	require.True(t, keys.IsReady())

	s3, _, err := InitSigningKeys(Config{}, slogx.Discard())
	require.NoError(t, err)
	require.NotEqual(t, s1.PublicJWK().X, s3.PublicJWK().X)
}

func TestNewServesSeededDemo(t *testing.T) {
	dir := t.TempDir()
	application, err := New(Config{
		Issuer:       "test-bank",
		Audience:     "aspen",
		DatabaseFile: ":memory:",
		PepperFile:   filepath.Join(dir, "pepper"),
		AccessTTL:    time.Minute,
		RefreshTTL:   time.Hour,
		SeedDemo:     true,
		LogLevel:     "error",
		LogFormat:    "text",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c, err := banksdk.New(banksdk.Config{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: slogx.Discard()})
	require.NoError(t, err)
	require.NoError(t, c.Login(ctx, service.DemoEmail, service.DemoPassword))

	accounts, err := c.GetAllAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	require.NoError(t, application.seedDemo(), "seeding twice is a no-op")
}
