package http

import (
	"net/http"

	"github.com/aussiebroadwan/aspen/internal/mockbank/service"
	"github.com/aussiebroadwan/aspen/pkg/banksdk"
	"github.com/aussiebroadwan/aspen/pkg/httpx"
)

type UserHandler struct {
	UserService *service.UserService
}

// HandleGetProfile handles GET /api/v1/user/profile
//
//	@Summary	Get profile
//	@Tags		User
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	banksdk.UserProfile		"The member"
//	@Failure	401	{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/user/profile [get].
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.ToAPI())
}

// HandleUpdateProfile handles PUT /api/v1/user/profile
//
//	@Summary		Update profile
//	@Description	Replaces the member's name and phone number.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		banksdk.UpdateProfileRequest	true	"New details"
//	@Success		200		{object}	banksdk.UserProfile				"The updated member"
//	@Failure		400		{object}	httpx.MessageResponse			"message"
//	@Failure		401		{object}	httpx.MessageResponse			"message"
//	@Router			/api/v1/user/profile [put].
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req banksdk.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.UserService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.ToAPI())
}

// HandleChangePassword handles PUT /api/v1/user/change-password
//
//	@Summary	Change password
//	@Tags		User
//	@Accept		json
//	@Security	BearerAuth
//	@Param		request	body	banksdk.ChangePasswordRequest	true	"Current and new password"
//	@Success	204		"Changed"
//	@Failure	400		{object}	httpx.MessageResponse	"message"
//	@Failure	401		{object}	httpx.MessageResponse	"message"
//	@Router		/api/v1/user/change-password [put].
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := member(w, r)
	if !ok {
		return
	}
	var req banksdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), userID, req); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}
