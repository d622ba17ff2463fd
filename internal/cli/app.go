package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/banksdk/fixture"
	"github.com/aussiebroadwan/aspen/pkg/credstore"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Backend is what the commands drive: either the HTTP client or the
// in-process fixture.
type Backend interface {
	banksdk.Banking
	Credentials(ctx context.Context) (banksdk.Credentials, bool)
}

// App runs CLI commands against a Backend.
type App struct {
	bank   Backend
	logger *slog.Logger
	out    io.Writer
	prompt *prompter

	closers []io.Closer
}

// New wires the credential store and backend described by cfg.
func New(cfg Config, stdin io.Reader, stdout, stderr io.Writer) (*App, error) {
	logger := slogx.New(slogx.Config{
		Service: "aspen",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  stderr,
	})

	app := &App{
		logger: logger,
		out:    stdout,
		prompt: &prompter{in: bufio.NewReader(stdin), out: stdout},
	}

	store, err := app.credentialStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Mock {
		bank, err := fixture.New(fixture.Config{Store: store, Logger: logger, SeedDemo: true})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.bank = bank
		app.closers = append(app.closers, bank)
		return app, nil
	}

	client, err := banksdk.New(banksdk.Config{
		Environment: banksdk.Environment(cfg.Env),
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		Store:       store,
		Logger:      logger,
		DeviceName:  cfg.DeviceName,
		UserAgent:   "aspen-cli/" + BuildVersion,
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.bank = client
	return app, nil
}

// NewWithBackend runs commands against bank. Tests use it with a fixture.
func NewWithBackend(bank Backend, stdin io.Reader, stdout io.Writer) *App {
	return &App{
		bank:   bank,
		logger: slogx.Discard(),
		out:    stdout,
		prompt: &prompter{in: bufio.NewReader(stdin), out: stdout},
	}
}

// credentialStore opens the encrypted store, or a memory store when no file
// is configured. The in-process bank forgets its ledger on exit, so its
// tokens are never persisted.
func (app *App) credentialStore(cfg Config) (banksdk.CredentialStore, error) {
	if cfg.Mock || cfg.CredentialsFile == "" {
		return banksdk.NewMemoryStore(), nil
	}

	key, err := cryptox.LoadOrCreateKeyFile(cfg.MasterKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return nil, err
	}
	store, err := credstore.Open(cfg.CredentialsFile, sealer)
	if err != nil {
		return nil, err
	}

	app.logger.Debug("credential store opened", "path", store.Path())
	app.closers = append(app.closers, store)
	return store, nil
}

// Close releases the credential store and any in-process ledger.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i].Close())
	}
	app.closers = nil
	return errors.Join(errs...)
}
