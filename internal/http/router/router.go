// Package router assembles the HTTP surface: route table, auth gates, and
// the rate-limited auth group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/http/handler"
	"go-commerce-service/internal/http/middleware"
	"go-commerce-service/internal/http/response"
)

type Deps struct {
	Auth     *handler.AuthHandler
	OAuth    *handler.OAuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Chat     *handler.ChatHandler
	AuthGate *middleware.Authenticator
	AuthRate *middleware.RateLimiter
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, "ok", nil)
	})

	authed := d.AuthGate.Middleware()

	r.Route("/auth", func(r chi.Router) {
		if d.AuthRate != nil {
			r.Use(d.AuthRate.Middleware())
		}
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.Post("/refresh-token", d.Auth.Refresh)
		r.Post("/logout", d.Auth.Logout)
		r.Post("/logout-all", d.Auth.LogoutAll)
		r.Post("/forgot-password", d.Auth.ForgotPassword)
		r.Post("/reset-password", d.Auth.ResetPassword)
	})

	r.Route("/oauth2", func(r chi.Router) {
		if d.AuthRate != nil {
			r.Use(d.AuthRate.Middleware())
		}
		r.Post("/google-login", d.OAuth.GoogleLogin)
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/verify-email/{token}", d.User.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/profile", d.User.Profile)
			r.Get("/sessions", d.User.Sessions)
			r.Patch("/change-password", d.User.ChangePassword)
			r.Post("/send-verification/{userId}", d.User.SendVerification)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", d.Product.List)
		r.Get("/{id}", d.Product.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Post("/", d.Product.Create)
			r.Put("/{id}", d.Product.Update)
			r.Delete("/{id}", d.Product.Delete)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", d.Cart.List)
		r.Post("/", d.Cart.Add)
		r.Delete("/", d.Cart.Clear)
		r.Patch("/{productId}", d.Cart.SetQuantity)
		r.Delete("/{productId}", d.Cart.Remove)
	})

	r.With(authed).Post("/chat", d.Chat.Complete)

	return r
}
