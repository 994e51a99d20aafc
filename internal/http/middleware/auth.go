package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/repository"
	"go-commerce-service/internal/security"
)

type contextKey string

const (
	claimsContextKey contextKey = "auth.claims"
	userContextKey   contextKey = "auth.user"
)

// Authenticator guards routes behind a valid access token. The token is
// checked by signature and expiry only; session state is enforced at refresh
// time, so a revoked session's access token stays usable for its remaining
// lifetime.
type Authenticator struct {
	jwt   *security.JWTManager
	users repository.UserRepository
}

func NewAuthenticator(jwtMgr *security.JWTManager, users repository.UserRepository) *Authenticator {
	return &Authenticator{jwt: jwtMgr, users: users}
}

func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerOrCookieToken(r)
			if raw == "" {
				response.Error(w, http.StatusUnauthorized, "access token is missing")
				return
			}
			claims, err := a.jwt.ParseAccessToken(raw)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}
			user, err := a.users.FindByIDPublic(userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					response.Error(w, http.StatusNotFound, "user not found")
					return
				}
				response.FromError(w, r, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to one role. Runs after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "access token is missing")
				return
			}
			if user.Role != role {
				response.Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *security.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return claims, ok
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// bearerOrCookieToken prefers the cookie, then the Authorization header.
func bearerOrCookieToken(r *http.Request) string {
	if raw := security.GetCookie(r, security.AccessTokenCookie); raw != "" {
		return raw
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}
