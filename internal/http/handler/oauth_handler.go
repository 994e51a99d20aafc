package handler

import (
	"encoding/json"
	"net/http"

	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/observability"
	"go-commerce-service/internal/security"
	"go-commerce-service/internal/service"
)

type OAuthHandler struct {
	authSvc service.AuthServiceInterface
	cookies *security.CookieManager
	cfg     service.AuthConfig
}

func NewOAuthHandler(authSvc service.AuthServiceInterface, cookies *security.CookieManager, cfg service.AuthConfig) *OAuthHandler {
	return &OAuthHandler{authSvc: authSvc, cookies: cookies, cfg: cfg}
}

// GoogleLogin trades a Google ID token for a first-party session. Links the
// federation id onto an existing account with the same email, or creates one.
func (h *OAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var input service.GoogleLoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}

	result, err := h.authSvc.GoogleLogin(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	h.cookies.SetAccessToken(w, result.Tokens.AccessToken, h.cfg.AccessTTL)
	h.cookies.SetRefreshToken(w, result.Tokens.RefreshToken, h.cfg.RefreshTTL)
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.google_login",
		ActorUserID: observability.ActorUserID(result.User.ID),
		TargetType:  "session",
		TargetID:    result.SessionID,
		Action:      "login",
		Outcome:     "success",
	})
	response.JSON(w, http.StatusOK, "login successful", result.User)
}
