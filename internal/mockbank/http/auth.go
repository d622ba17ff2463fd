package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/aspen/internal/mockbank/domain"
	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
)

// AuthHandler serves registration, sign in and session management.
type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister handles POST /api/v1/auth/register
//
//	@Summary		Register
//	@Description	Creates a member. The caller still has to sign in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.RegisterRequest		true	"New member"
//	@Success		201		{object}	banksdk.UserProfile			"The created member"
//	@Failure		400		{object}	httpx.MessageResponse		"message"
//	@Failure		409		{object}	httpx.MessageResponse		"message"
//	@Router			/api/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req banksdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u.ToAPI())
}

// HandleLogin handles POST /api/v1/auth/login
//
//	@Summary		Sign in
//	@Description	Checks the member's password and opens a session for the device named in X-Device-Name.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			X-Device-Name	header		string					false	"Shown in the active session list"
//	@Param			request			body		banksdk.LoginRequest	true	"Credentials"
//	@Success		200				{object}	banksdk.AuthResponse	"token, refreshToken, expiresAt"
//	@Failure		400				{object}	httpx.MessageResponse	"message"
//	@Failure		401				{object}	httpx.MessageResponse	"message"
//	@Failure		429				{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req banksdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req, deviceFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair.ToAPI())
}

// HandleRefresh handles POST /api/v1/auth/refresh-token
//
//	@Summary		Refresh tokens
//	@Description	Trades a refresh token for a new pair. The old refresh token is spent.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		banksdk.RefreshTokenRequest	true	"Refresh token"
//	@Success		200		{object}	banksdk.TokenResponse		"token, refreshToken, expiresAt"
//	@Failure		401		{object}	httpx.MessageResponse		"message"
//	@Router			/api/v1/auth/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req banksdk.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expires := banksdk.NewTime(pair.ExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, banksdk.TokenResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    &expires,
	})
}

// HandleLogout handles POST /api/v1/auth/logout
//
//	@Summary		Sign out
//	@Description	Revokes the session the access token belongs to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Signed out"
//	@Failure		401	{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	sid, _ := httpx.SessionIDFromContext(r.Context())

	if err := h.AuthService.Logout(r.Context(), userID, sid); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

// HandleActiveSessions handles GET /api/v1/auth/active-sessions
//
//	@Summary		List active sessions
//	@Description	Every signed-in device, most recently active first. The caller's own session is flagged.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		banksdk.ActiveSession	"Active sessions"
//	@Failure		401	{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/auth/active-sessions [get].
func (h *AuthHandler) HandleActiveSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	sessions, err := h.AuthService.ActiveSessions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sid, _ := httpx.SessionIDFromContext(r.Context())
	current, _ := strconv.ParseInt(sid, 10, 64)
	httpx.WriteJSON(w, http.StatusOK, toAPI(sessions, func(s domain.Session) banksdk.ActiveSession {
		return s.ToAPI(current)
	}))
}

// HandleRevokeSession handles POST /api/v1/auth/revoke-session/{id}
//
//	@Summary		Revoke a session
//	@Description	Signs out one of the member's devices.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Session id"
//	@Success		204	"Revoked"
//	@Failure		400	{object}	httpx.MessageResponse	"message"
//	@Failure		401	{object}	httpx.MessageResponse	"message"
//	@Failure		404	{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/auth/revoke-session/{id} [post].
func (h *AuthHandler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteMessage(w, http.StatusBadRequest, "session id must be a positive integer")
		return
	}

	if err := h.AuthService.RevokeSession(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

// HandleRevokeAllSessions handles POST /api/v1/auth/revoke-all-sessions
//
//	@Summary		Revoke all sessions
//	@Description	Signs out every device, including the caller's.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Revoked"
//	@Failure		401	{object}	httpx.MessageResponse	"message"
//	@Router			/api/v1/auth/revoke-all-sessions [post].
func (h *AuthHandler) HandleRevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	if err := h.AuthService.RevokeAllSessions(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}
