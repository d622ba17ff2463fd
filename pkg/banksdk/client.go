package banksdk

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client talks to the bank over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	log        *slog.Logger

	deviceName   string
	userAgent    string
	limiter      *rate.Limiter
	strictLogout bool

	refreshes singleflight.Group
}

// New builds a Client from cfg, filling in defaults.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("banksdk: invalid config: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "banksdk")

	base := cfg.BaseURL
	if base == "" {
		base = cfg.Environment.BaseURL()
	}
	apiPath := cfg.APIPath
	if apiPath == "" {
		apiPath = DefaultAPIPath
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: &slogx.Transport{Logger: log},
		}
	}

	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(base, "/") + "/" + strings.Trim(apiPath, "/"),
		httpClient:   httpClient,
		tokens:       NewTokenManager(store, log),
		log:          log,
		deviceName:   cfg.DeviceName,
		userAgent:    userAgent,
		strictLogout: cfg.StrictLogout,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}
	return c, nil
}

// BaseURL returns the resolved API root, including the version prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// Tokens exposes the token manager, mostly for tests and the CLI.
func (c *Client) Tokens() *TokenManager { return c.tokens }
