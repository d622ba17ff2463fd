package banksdk

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Environment selects a deployment's base URL.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvProduction Environment = "production"
)

// BaseURL returns the deployment's base URL.
func (e Environment) BaseURL() string {
	switch e {
	case EnvProduction:
		return "https://api.wessex-group.com"
	default:
		return "http://localhost:5000"
	}
}

const (
	DefaultAPIPath   = "/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "aspen-go/1"
)

// Config configures a Client. The zero value talks to the local deployment
// with an in-memory credential store.
type Config struct {
	// Environment picks the base URL when BaseURL is empty.
	Environment Environment

	// BaseURL overrides the environment's base URL.
	BaseURL string

	// APIPath is the versioned prefix. Defaults to /api/v1.
	APIPath string

	// Timeout bounds each HTTP round trip. Defaults to 30s. Ignored when
	// HTTPClient is set.
	Timeout time.Duration

	// HTTPClient replaces the default client.
	HTTPClient *http.Client

	// Store holds the token pair. Defaults to a MemoryStore.
	Store CredentialStore

	Logger *slog.Logger

	// DeviceName is sent as X-Device-Name so the bank can label the session.
	DeviceName string

	UserAgent string

	// RequestsPerSecond throttles outgoing requests when positive.
	RequestsPerSecond float64

	// StrictLogout only clears local tokens once the server confirms the
	// logout. By default tokens are cleared whatever the server says.
	StrictLogout bool
}

// Validate checks the configuration before a Client is built.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Environment, validation.In(EnvLocal, EnvProduction)),
		validation.Field(&c.BaseURL, validation.By(absoluteURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}
