package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-commerce-service/internal/http/middleware"
	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/observability"
	"go-commerce-service/internal/security"
	"go-commerce-service/internal/service"
)

type UserHandler struct {
	userSvc    service.UserServiceInterface
	authSvc    service.AuthServiceInterface
	storageSvc service.StorageService
	cookies    *security.CookieManager
}

func NewUserHandler(userSvc service.UserServiceInterface, authSvc service.AuthServiceInterface, storageSvc service.StorageService, cookies *security.CookieManager) *UserHandler {
	return &UserHandler{userSvc: userSvc, authSvc: authSvc, storageSvc: storageSvc, cookies: cookies}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	profile, err := h.userSvc.Profile(user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	// Avatar keys are storage-relative; serve a presigned URL instead.
	if profile.AvatarURL != "" {
		if url, err := h.storageSvc.AvatarURL(r.Context(), profile.AvatarURL); err == nil && url != "" {
			profile.AvatarURL = url
		}
	}
	response.JSON(w, http.StatusOK, "profile loaded", profile)
}

func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	sessions, err := h.userSvc.Sessions(user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "sessions loaded", sessions)
}

// ChangePassword rotates the password, revokes every session, and clears the
// caller's cookies so the client re-authenticates.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	var body struct {
		OldPassword     string `json:"oldPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	if err := h.authSvc.ChangePassword(r.Context(), user.ID, body.OldPassword, body.NewPassword, body.ConfirmPassword); err != nil {
		response.FromError(w, r, err)
		return
	}
	h.cookies.ClearTokenCookies(w)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "user.change_password",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "user",
		TargetID:    observability.ActorUserID(user.ID),
		Action:      "change_password",
		Outcome:     "success",
	})
	response.JSON(w, http.StatusOK, "password changed, please log in again", nil)
}

func (h *UserHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userId")
	userID64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.authSvc.SendVerification(r.Context(), uint(userID64)); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "verification email sent", nil)
}

// VerifyEmail is hit from the mail client, so it answers with a redirect to
// the frontend rather than a JSON envelope.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	target, err := h.authSvc.VerifyEmail(r.Context(), token)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
