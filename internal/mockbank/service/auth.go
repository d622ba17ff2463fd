package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/jwtx"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
	"github.com/google/uuid"
)

// Device describes where a login came from. It is shown back to the member
// in the active session list.
type Device struct {
	Name string
	IP   string
}

// AuthService owns registration, login and the session lifecycle. Access
// tokens are EdDSA JWTs carrying the session id; refresh tokens are opaque,
// stored as fingerprints and rotated on every use.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// NormalizeEmail is how emails are compared and stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a member. It does not sign them in.
func (s *AuthService) Register(ctx context.Context, req banksdk.RegisterRequest) (domain.User, error) {
	req.Email = NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate(req); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := clock(s.Now)
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("member registered", "user_id", u.ID)
	return u, nil
}

// Login checks the password and opens a new session for the device.
func (s *AuthService) Login(ctx context.Context, req banksdk.LoginRequest, dev Device) (domain.TokenPair, error) {
	if err := validate(req); err != nil {
		return domain.TokenPair{}, err
	}
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}
	if err := cryptox.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		log.Info("login failed", "user_id", u.ID)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}

	now := clock(s.Now)
	deviceName := strings.TrimSpace(dev.Name)
	if deviceName == "" {
		deviceName = "Unknown device"
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		sid, err := tx.Sessions().CreateSession(ctx, domain.Session{
			UserID:           u.ID,
			RefreshHash:      cryptox.FingerprintToken(refreshOpaque),
			DeviceName:       deviceName,
			IPAddress:        dev.IP,
			LastActive:       now,
			RefreshExpiresAt: now.Add(s.RefreshTTL),
			CreatedAt:        now,
		})
		if err != nil {
			return err
		}

		access, expiresAt, err := s.signAccess(u, sid, now)
		if err != nil {
			return err
		}
		pair = domain.TokenPair{AccessToken: access, RefreshToken: refreshOpaque, ExpiresAt: expiresAt}
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	log.Info("member signed in", "user_id", u.ID, "device", deviceName)
	return pair, nil
}

// Refresh trades a refresh token for a new pair. The old refresh token
// stops working as soon as this returns.
func (s *AuthService) Refresh(ctx context.Context, req banksdk.RefreshTokenRequest) (domain.TokenPair, error) {
	if strings.TrimSpace(req.RefreshToken) == "" {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	now := clock(s.Now)

	oldFP := cryptox.FingerprintToken(req.RefreshToken)
	sess, err := s.Store.Sessions().GetSessionByRefreshHash(ctx, oldFP)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}
	if !sess.Active(now) {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}

	// Compare and swap on the old fingerprint so two concurrent refreshes
	// with the same token cannot both win.
	err = s.Store.Sessions().RotateRefreshHash(ctx, sess.ID, oldFP,
		cryptox.FingerprintToken(newOpaque), now.Add(s.RefreshTTL), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	access, expiresAt, err := s.signAccess(u, sess.ID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: newOpaque, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) signAccess(u domain.User, sid int64, now time.Time) (string, time.Time, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,
		strconv.FormatInt(sid, 10),
		u.Email,
		s.Issuer,
		s.Audience,
		s.AccessTTL,
		now,
	)
	tok, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, now.Add(s.AccessTTL), nil
}

// CheckSession rejects access tokens whose session was revoked or has
// expired, and records activity on the ones that pass.
func (s *AuthService) CheckSession(ctx context.Context, claims jwtx.Claims) error {
	sid, err := strconv.ParseInt(claims.SID, 10, 64)
	if err != nil {
		return ErrSessionRevoked
	}

	sess, err := s.Store.Sessions().GetSessionByID(ctx, sid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionRevoked
		}
		return err
	}

	now := clock(s.Now)
	if sess.UserID != claims.Subject || !sess.Active(now) {
		return ErrSessionRevoked
	}

	if err := s.Store.Sessions().TouchSession(ctx, sid, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to record session activity", "sid", sid, "err", err)
	}
	return nil
}

// Logout revokes the session the caller's token belongs to.
func (s *AuthService) Logout(ctx context.Context, userID, sid string) error {
	id, err := strconv.ParseInt(sid, 10, 64)
	if err != nil {
		return ErrSessionRevoked
	}
	err = s.Store.Sessions().RevokeSession(ctx, userID, id, clock(s.Now))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) ActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.Store.Sessions().ListActiveSessions(ctx, userID, clock(s.Now))
}

// RevokeSession signs out one of the member's devices.
func (s *AuthService) RevokeSession(ctx context.Context, userID string, id int64) error {
	err := s.Store.Sessions().RevokeSession(ctx, userID, id, clock(s.Now))
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// RevokeAllSessions signs out every device, the caller's included.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.Store.Sessions().RevokeAllSessions(ctx, userID, clock(s.Now))
}
