package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/store"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/cryptox"
	"github.com/aussiebroadwan/aspen/pkg/slogx"
)

type UserService struct {
	Store store.Store
	Now   func() time.Time
}

// Profile fetches the member by id.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile replaces the member's name and phone number. The email
// cannot be changed here.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	userID string,
	req banksdk.UpdateProfileRequest,
) (domain.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate(req); err != nil {
		return domain.User{}, err
	}

	err := s.Store.Users().UpdateProfile(ctx, userID, req.FirstName, req.LastName, req.PhoneNumber, clock(s.Now))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword requires the current password. Existing sessions stay
// signed in.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req banksdk.ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := cryptox.VerifyPassword(req.CurrentPassword, u.PasswordHash); err != nil {
		return ErrWrongPassword
	}

	hash, err := cryptox.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash, clock(s.Now)); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}
