package banksdk

import (
	"context"
	"log/slog"
	"maps"
	"sync"
)

// Keys the token pair is stored under.
const (
	KeyAccessToken  = "com.aspencreditunion.accessToken"
	KeyRefreshToken = "com.aspencreditunion.refreshToken"
	KeyExpiresAt    = "com.aspencreditunion.expiresAt"
)

// CredentialStore is a small key/value store for secrets. Get returns
// ("", nil) for a missing key. SetAll and DeleteAll must apply every key or
// none.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	SetAll(ctx context.Context, values map[string]string) error
	DeleteAll(ctx context.Context, keys ...string) error
}

// MemoryStore is a process-local CredentialStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	return nil
}

func (m *MemoryStore) DeleteAll(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// TokenManager owns the token pair inside a CredentialStore. Reads that fail
// are treated as a missing value.
type TokenManager struct {
	store CredentialStore
	log   *slog.Logger

	// Writes are serialised so a save and a clear cannot interleave.
	mu sync.Mutex
}

func NewTokenManager(store CredentialStore, log *slog.Logger) *TokenManager {
	if log == nil {
		log = slog.Default()
	}
	return &TokenManager{store: store, log: log}
}

func (m *TokenManager) get(ctx context.Context, key string) string {
	v, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn("credential read failed, treating as absent", "key", key, "err", err)
		return ""
	}
	return v
}

// AccessToken returns the stored access token or "".
func (m *TokenManager) AccessToken(ctx context.Context) string {
	return m.get(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token or "".
func (m *TokenManager) RefreshToken(ctx context.Context) string {
	return m.get(ctx, KeyRefreshToken)
}

// Credentials returns the stored pair. ok is false without an access token.
func (m *TokenManager) Credentials(ctx context.Context) (Credentials, bool) {
	c := Credentials{
		AccessToken:  m.AccessToken(ctx),
		RefreshToken: m.RefreshToken(ctx),
	}
	if c.AccessToken == "" {
		return Credentials{}, false
	}
	if raw := m.get(ctx, KeyExpiresAt); raw != "" {
		if t, err := ParseTime(raw); err == nil {
			c.ExpiresAt = &t
		}
	}
	return c, true
}

// Save replaces the whole pair in one store operation.
func (m *TokenManager) Save(ctx context.Context, c Credentials) error {
	values := map[string]string{
		KeyAccessToken:  c.AccessToken,
		KeyRefreshToken: c.RefreshToken,
		KeyExpiresAt:    "",
	}
	if c.ExpiresAt != nil {
		values[KeyExpiresAt] = c.ExpiresAt.String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.SetAll(ctx, values)
}

// Clear removes the pair.
func (m *TokenManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.DeleteAll(ctx, KeyAccessToken, KeyRefreshToken, KeyExpiresAt)
}
