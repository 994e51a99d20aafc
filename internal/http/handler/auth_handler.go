package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/observability"
	"go-commerce-service/internal/security"
	"go-commerce-service/internal/service"
)

// maxRegisterBodySize bounds the multipart register payload; the avatar
// itself is capped separately by the storage service.
const maxRegisterBodySize = 10 << 20

type AuthHandler struct {
	authSvc    service.AuthServiceInterface
	storageSvc service.StorageService
	cookies    *security.CookieManager
	cfg        service.AuthConfig
}

func NewAuthHandler(authSvc service.AuthServiceInterface, storageSvc service.StorageService, cookies *security.CookieManager, cfg service.AuthConfig) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, storageSvc: storageSvc, cookies: cookies, cfg: cfg}
}

// Register accepts either JSON or multipart form data; the multipart variant
// may carry an avatar image that is staged in object storage before the user
// row exists, and deleted again if the flow fails.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	input, avatarKey, err := h.decodeRegister(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	user, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		if avatarKey != "" {
			if cleanupErr := h.storageSvc.DeleteAvatar(r.Context(), avatarKey); cleanupErr != nil {
				slog.WarnContext(r.Context(), "failed to clean up staged avatar", "object_key", avatarKey, "error", cleanupErr)
			}
		}
		response.FromError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.register",
		ActorUserID: observability.ActorUserID(user.ID),
		TargetType:  "user",
		TargetID:    observability.ActorUserID(user.ID),
		Action:      "register",
		Outcome:     "success",
	})
	response.JSON(w, http.StatusCreated, "user registered", user)
}

func (h *AuthHandler) decodeRegister(r *http.Request) (service.RegisterInput, string, error) {
	var input service.RegisterInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxRegisterBodySize); err != nil {
			return input, "", errBadBody
		}
		input.Username = r.FormValue("username")
		input.Name = r.FormValue("name")
		input.Email = r.FormValue("email")
		input.Password = r.FormValue("password")

		file, header, err := r.FormFile("avatar")
		if err == nil {
			defer func() { _ = file.Close() }()
			key, err := h.storageSvc.UploadAvatar(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
			if err != nil {
				return input, "", mapStorageError(err)
			}
			input.AvatarURL = key
			return input, key, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return input, "", errBadBody
		}
		return input, "", nil
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, "", errBadBody
	}
	return input, "", nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}

	result, err := h.authSvc.Login(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.cookies.SetAccessToken(w, result.Tokens.AccessToken, h.cfg.AccessTTL)
	h.cookies.SetRefreshToken(w, result.Tokens.RefreshToken, h.cfg.RefreshTTL)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.login",
		ActorUserID: observability.ActorUserID(result.User.ID),
		TargetType:  "session",
		TargetID:    result.SessionID,
		Action:      "login",
		Outcome:     "success",
	})
	response.JSON(w, http.StatusOK, "login successful", result.User)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	access, err := h.authSvc.Refresh(r.Context(), raw)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	h.cookies.SetAccessToken(w, access, h.cfg.AccessTTL)
	response.JSON(w, http.StatusOK, "access token refreshed", nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	if err := h.authSvc.Logout(r.Context(), raw); err != nil {
		response.FromError(w, r, err)
		return
	}
	h.cookies.ClearTokenCookies(w)
	response.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	if err := h.authSvc.LogoutAll(r.Context(), raw); err != nil {
		response.FromError(w, r, err)
		return
	}
	h.cookies.ClearTokenCookies(w)
	response.JSON(w, http.StatusOK, "logged out everywhere", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	if err := h.authSvc.ForgotPassword(r.Context(), body.Email); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "password reset email sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token           string `json:"token"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	if err := h.authSvc.ResetPassword(r.Context(), body.Token, body.NewPassword, body.ConfirmPassword); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "password has been reset", nil)
}
