package bank_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// TestProbes verifies the liveness and readiness endpoints.
func TestProbes(t *testing.T) {
	baseURL := setupBankContainer(t)

	status, health := getHealth(t, baseURL+"/livez")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)

	status, health = getHealth(t, baseURL+"/readyz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)
}

// TestJWKSEndpoint verifies the signing key is published.
func TestJWKSEndpoint(t *testing.T) {
	baseURL := setupBankContainer(t)

	resp, err := http.Get(baseURL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jwks jwtx.JWKS
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)

	t.Logf("JWKS key id %s", jwks.Keys[0].Kid)
}
