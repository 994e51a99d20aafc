package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/security"
	"go-commerce-service/internal/service"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	googleLoginFn    func(ctx context.Context, input service.GoogleLoginInput) (*service.LoginResult, error)
	refreshFn        func(ctx context.Context, raw string) (string, error)
	logoutFn         func(ctx context.Context, raw string) error
	logoutAllFn      func(ctx context.Context, raw string) error
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, token, newPw, confirmPw string) error
	changePasswordFn func(ctx context.Context, userID uint, oldPw, newPw, confirmPw string) error
	sendVerifyFn     func(ctx context.Context, userID uint) error
	verifyEmailFn    func(ctx context.Context, token string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}
func (s *stubAuthService) Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error) {
	return s.loginFn(ctx, input)
}
func (s *stubAuthService) GoogleLogin(ctx context.Context, input service.GoogleLoginInput) (*service.LoginResult, error) {
	return s.googleLoginFn(ctx, input)
}
func (s *stubAuthService) Refresh(ctx context.Context, raw string) (string, error) {
	return s.refreshFn(ctx, raw)
}
func (s *stubAuthService) Logout(ctx context.Context, raw string) error { return s.logoutFn(ctx, raw) }
func (s *stubAuthService) LogoutAll(ctx context.Context, raw string) error {
	return s.logoutAllFn(ctx, raw)
}
func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotPasswordFn(ctx, email)
}
func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPw, confirmPw string) error {
	return s.resetPasswordFn(ctx, token, newPw, confirmPw)
}
func (s *stubAuthService) ChangePassword(ctx context.Context, userID uint, oldPw, newPw, confirmPw string) error {
	return s.changePasswordFn(ctx, userID, oldPw, newPw, confirmPw)
}
func (s *stubAuthService) SendVerification(ctx context.Context, userID uint) error {
	return s.sendVerifyFn(ctx, userID)
}
func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return s.verifyEmailFn(ctx, token)
}

type stubStorageService struct {
	uploadFn  func(ctx context.Context, file io.Reader, size int64, contentType string) (string, error)
	deleteFn  func(ctx context.Context, key string) error
	urlFn     func(ctx context.Context, key string) (string, error)
	deletions []string
}

func (s *stubStorageService) UploadAvatar(ctx context.Context, file io.Reader, size int64, contentType string) (string, error) {
	return s.uploadFn(ctx, file, size, contentType)
}
func (s *stubStorageService) DeleteAvatar(ctx context.Context, key string) error {
	s.deletions = append(s.deletions, key)
	if s.deleteFn != nil {
		return s.deleteFn(ctx, key)
	}
	return nil
}
func (s *stubStorageService) AvatarURL(ctx context.Context, key string) (string, error) {
	if s.urlFn != nil {
		return s.urlFn(ctx, key)
	}
	return "", nil
}

func testAuthConfig() service.AuthConfig {
	return service.AuthConfig{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return body
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterHandlerJSON(t *testing.T) {
	auth := &stubAuthService{
		registerFn: func(_ context.Context, input service.RegisterInput) (*domain.User, error) {
			if input.Username != "user1" || input.Email != "user1@x.com" {
				t.Errorf("unexpected input: %+v", input)
			}
			return &domain.User{ID: 1, Username: input.Username, Email: input.Email}, nil
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"user1","name":"U","email":"user1@x.com","password":"Str0ng!Pass"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != true || body["statusCode"] != float64(201) {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestRegisterHandlerConflictEnvelope(t *testing.T) {
	auth := &stubAuthService{
		registerFn: func(context.Context, service.RegisterInput) (*domain.User, error) {
			return nil, apperror.Conflict("email is already registered")
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"username":"user1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false || body["message"] != "email is already registered" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func multipartRegisterRequest(t *testing.T, withAvatar bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"username": "user1", "name": "U", "email": "user1@x.com", "password": "Str0ng!Pass",
	} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if withAvatar {
		part, err := mw.CreateFormFile("avatar", "me.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("png-bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegisterHandlerMultipartWithAvatar(t *testing.T) {
	storage := &stubStorageService{
		uploadFn: func(_ context.Context, _ io.Reader, _ int64, contentType string) (string, error) {
			return "avatars/abc.png", nil
		},
	}
	auth := &stubAuthService{
		registerFn: func(_ context.Context, input service.RegisterInput) (*domain.User, error) {
			if input.AvatarURL != "avatars/abc.png" {
				t.Errorf("expected staged avatar key, got %q", input.AvatarURL)
			}
			return &domain.User{ID: 1, Username: input.Username}, nil
		},
	}
	h := NewAuthHandler(auth, storage, security.NewCookieManager(true), testAuthConfig())

	rec := httptest.NewRecorder()
	h.Register(rec, multipartRegisterRequest(t, true))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(storage.deletions) != 0 {
		t.Fatalf("successful register must not delete the avatar: %v", storage.deletions)
	}
}

func TestRegisterHandlerCleansUpAvatarOnFailure(t *testing.T) {
	storage := &stubStorageService{
		uploadFn: func(context.Context, io.Reader, int64, string) (string, error) {
			return "avatars/stale.png", nil
		},
	}
	auth := &stubAuthService{
		registerFn: func(context.Context, service.RegisterInput) (*domain.User, error) {
			return nil, apperror.Conflict("username is already taken")
		},
	}
	h := NewAuthHandler(auth, storage, security.NewCookieManager(true), testAuthConfig())

	rec := httptest.NewRecorder()
	h.Register(rec, multipartRegisterRequest(t, true))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if len(storage.deletions) != 1 || storage.deletions[0] != "avatars/stale.png" {
		t.Fatalf("expected staged avatar deleted, got %v", storage.deletions)
	}
}

func TestLoginHandlerSetsCookies(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(_ context.Context, input service.LoginInput) (*service.LoginResult, error) {
			return &service.LoginResult{
				User:      &domain.User{ID: 1, Email: input.Email},
				SessionID: "sess-1",
				Tokens:    service.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
			}, nil
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"user1@x.com","password":"Str0ng!Pass","device":"desktop"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	access := cookieByName(rec, security.AccessTokenCookie)
	refresh := cookieByName(rec, security.RefreshTokenCookie)
	if access == nil || refresh == nil {
		t.Fatal("expected both token cookies")
	}
	if access.Value != "acc" || refresh.Value != "ref" {
		t.Fatalf("unexpected cookie values %q %q", access.Value, refresh.Value)
	}
	for _, c := range []*http.Cookie{access, refresh} {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode || c.Path != "/" {
			t.Fatalf("cookie attributes wrong: %+v", c)
		}
	}
}

func TestLoginHandlerUnauthorized(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(context.Context, service.LoginInput) (*service.LoginResult, error) {
			return nil, apperror.Unauthorized("invalid email or password")
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com","password":"x"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if c := cookieByName(rec, security.AccessTokenCookie); c != nil {
		t.Fatal("failed login must not set cookies")
	}
}

func TestRefreshHandlerReadsRefreshCookie(t *testing.T) {
	auth := &stubAuthService{
		refreshFn: func(_ context.Context, raw string) (string, error) {
			if raw != "the-refresh-token" {
				t.Errorf("expected cookie value forwarded, got %q", raw)
			}
			return "new-access", nil
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "the-refresh-token"})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	access := cookieByName(rec, security.AccessTokenCookie)
	if access == nil || access.Value != "new-access" {
		t.Fatalf("expected new access cookie, got %+v", access)
	}
	if refresh := cookieByName(rec, security.RefreshTokenCookie); refresh != nil {
		t.Fatal("refresh must not rotate the refresh cookie")
	}
}

func TestRefreshHandlerForbiddenAfterRevocation(t *testing.T) {
	auth := &stubAuthService{
		refreshFn: func(context.Context, string) (string, error) {
			return "", apperror.Forbidden("session is not active")
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "revoked"})
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestLogoutHandlersClearCookies(t *testing.T) {
	cases := []struct {
		name string
		call func(h *AuthHandler, w http.ResponseWriter, r *http.Request)
	}{
		{name: "logout", call: func(h *AuthHandler, w http.ResponseWriter, r *http.Request) { h.Logout(w, r) }},
		{name: "logout-all", call: func(h *AuthHandler, w http.ResponseWriter, r *http.Request) { h.LogoutAll(w, r) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &stubAuthService{
				logoutFn:    func(context.Context, string) error { return nil },
				logoutAllFn: func(context.Context, string) error { return nil },
			}
			h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			req.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "ref"})
			rec := httptest.NewRecorder()
			tc.call(h, rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			for _, name := range []string{security.AccessTokenCookie, security.RefreshTokenCookie} {
				c := cookieByName(rec, name)
				if c == nil || c.MaxAge != -1 {
					t.Fatalf("expected %s cleared, got %+v", name, c)
				}
			}
		})
	}
}

func TestForgotAndResetPasswordHandlers(t *testing.T) {
	auth := &stubAuthService{
		forgotPasswordFn: func(_ context.Context, email string) error {
			if email != "user1@x.com" {
				t.Errorf("unexpected email %q", email)
			}
			return nil
		},
		resetPasswordFn: func(_ context.Context, token, newPw, confirmPw string) error {
			if token != "tok" || newPw != "NewStr0ng!1" || confirmPw != "NewStr0ng!1" {
				t.Errorf("unexpected args %q %q %q", token, newPw, confirmPw)
			}
			return nil
		},
	}
	h := NewAuthHandler(auth, &stubStorageService{}, security.NewCookieManager(true), testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(`{"email":"user1@x.com"}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"token":"tok","newPassword":"NewStr0ng!1","confirmPassword":"NewStr0ng!1"}`))
	rec = httptest.NewRecorder()
	h.ResetPassword(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
}
