package security

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieManager writes the token cookies the way the frontend expects them:
// httpOnly, SameSite=None for the cross-site SPA, path "/".
type CookieManager struct {
	Secure bool
}

func NewCookieManager(secure bool) *CookieManager {
	return &CookieManager{Secure: secure}
}

func (c *CookieManager) SetAccessToken(w http.ResponseWriter, token string, ttl time.Duration) {
	c.set(w, AccessTokenCookie, token, ttl)
}

func (c *CookieManager) SetRefreshToken(w http.ResponseWriter, token string, ttl time.Duration) {
	c.set(w, RefreshTokenCookie, token, ttl)
}

func (c *CookieManager) ClearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteNoneMode,
		})
	}
}

func (c *CookieManager) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func GetCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
