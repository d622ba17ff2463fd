package bank_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helpers for the mock bank end-to-end tests: image
 * build, container setup, SDK clients and assertions.
 */

const (
	testImageName = "aspen-mockbank-test:latest"

	memberPassword = "Member-Pass-123"
)

// TestMain builds the image once before all tests and removes it after.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Mock Bank Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Mock Bank Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/mockbank/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // the image may already be gone
}

func baseEnv() map[string]string {
	return map[string]string{
		"MOCKBANK_ISSUER":    "aspen-mockbank",
		"MOCKBANK_SEED_DEMO": "true",
		"ENV":                "test",
		"LOG_LEVEL":          "info",
		"LOG_FORMAT":         "json",
	}
}

// setupBankContainer starts the mock bank with relaxed rate limits and
// returns its base URL.
func setupBankContainer(t *testing.T) string {
	t.Helper()

	env := baseEnv()
	// Tests make many rapid requests which would otherwise hit the
	// production limits.
	for _, profile := range []string{"STRICT", "MODERATE", "LENIENT"} {
		env["RATELIMIT_"+profile+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+profile+"_WINDOW_SEC"] = "60"
		env["RATELIMIT_"+profile+"_BURST"] = "1000"
	}
	return startContainer(t, env)
}

// setupBankContainerWithDefaultRateLimits keeps production limits, for the
// rate limit tests only.
func setupBankContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"5000/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("5000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "5000")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// newClient returns an SDK client for one device.
func newClient(t *testing.T, baseURL, device string) *banksdk.Client {
	t.Helper()
	c, err := banksdk.New(banksdk.Config{
		BaseURL:    baseURL,
		DeviceName: device,
		Logger:     slogx.Discard(),
	})
	require.NoError(t, err)
	return c
}

// registerMember creates a member with memberPassword and signs c in.
func registerMember(t *testing.T, c *banksdk.Client, email string) {
	t.Helper()
	require.NoError(t, c.Register(t.Context(), banksdk.RegisterRequest{
		Email:           email,
		Password:        memberPassword,
		ConfirmPassword: memberPassword,
		FirstName:       "Edsger",
		LastName:        "Dijkstra",
	}))
	require.NoError(t, c.Login(t.Context(), email, memberPassword))
}

// getHealth fetches a probe endpoint.
func getHealth(t *testing.T, url string) (int, banksdk.HealthResponse) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var health banksdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	return resp.StatusCode, health
}

// assertServerError checks err is a bank response with the given status.
func assertServerError(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: status}, "got: %v", err)
}

// hasStatus reports whether err is a bank response with the given status.
func hasStatus(err error, status int) bool {
	return errors.Is(err, &banksdk.Error{Kind: banksdk.KindServerError, StatusCode: status})
}
