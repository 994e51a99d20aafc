package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/repository"
	"go-commerce-service/internal/security"
)

// DefaultDevice labels logins that did not report a device.
const DefaultDevice = "unknown device"

type AuthConfig struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ResetTTL        time.Duration
	VerifyTTL       time.Duration
	FrontendBaseURL string
	BackendBaseURL  string
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,username"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
	AvatarURL string `json:"-"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Device   string `json:"device"`
}

type GoogleLoginInput struct {
	TokenID string `json:"tokenId" validate:"required"`
	Device  string `json:"device"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	User      *domain.User
	SessionID string
	Tokens    TokenPair
}

type AuthServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	GoogleLogin(ctx context.Context, input GoogleLoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, rawRefreshToken string) (string, error)
	Logout(ctx context.Context, rawRefreshToken string) error
	LogoutAll(ctx context.Context, rawRefreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmPassword string) error
	SendVerification(ctx context.Context, userID uint) error
	VerifyEmail(ctx context.Context, token string) (string, error)
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	jwt      *security.JWTManager
	verifier GoogleVerifier
	mailer   Mailer
	cfg      AuthConfig
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	jwtMgr *security.JWTManager,
	verifier GoogleVerifier,
	mailer Mailer,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwt:      jwtMgr,
		verifier: verifier,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates an account, or claims an existing password-less account
// created through Google sign-in with the same email.
func (s *AuthService) Register(_ context.Context, input RegisterInput) (*domain.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))

	existing, err := s.users.FindByEmailOrUsername(email, username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user := &domain.User{
			Username:     username,
			Email:        email,
			Name:         strings.TrimSpace(input.Name),
			PasswordHash: &hash,
			AvatarURL:    input.AvatarURL,
			Role:         domain.RoleUser,
		}
		if err := s.users.Create(user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil

	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)

	case existing.Email == email && !existing.HasPassword():
		// Claim flow: the account exists from Google sign-in only.
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		existing.PasswordHash = &hash
		existing.Username = username
		existing.Name = strings.TrimSpace(input.Name)
		if input.AvatarURL != "" {
			existing.AvatarURL = input.AvatarURL
		}
		if err := s.users.Update(existing); err != nil {
			return nil, fmt.Errorf("claim user: %w", err)
		}
		return existing, nil

	case existing.Email == email:
		return nil, apperror.Conflict("email is already registered")

	default:
		return nil, apperror.Conflict("username is already taken")
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.HasPassword() {
		return nil, apperror.Unauthorized("account has no password; use google sign-in or register to set one")
	}
	if !security.CheckPassword(input.Password, *user.PasswordHash) {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	return s.issueSession(ctx, user, input.Device)
}

func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleLoginInput) (*LoginResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	identity, err := s.verifier.Verify(ctx, input.TokenID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByGoogleID(identity.Sub)
	if errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.linkOrCreateGoogleUser(identity)
	}
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, input.Device)
}

func (s *AuthService) linkOrCreateGoogleUser(identity *GoogleIdentity) (*domain.User, error) {
	sub := identity.Sub
	user, err := s.users.FindByEmail(identity.Email)
	if err == nil {
		user.GoogleID = &sub
		if err := s.users.Update(user); err != nil {
			return nil, fmt.Errorf("link google id: %w", err)
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	user = &domain.User{
		Username:   deriveUsername(identity.Email),
		Email:      strings.ToLower(identity.Email),
		Name:       identity.Name,
		GoogleID:   &sub,
		AvatarURL:  identity.Picture,
		Role:       domain.RoleUser,
		IsVerified: true,
	}
	if err := s.users.Create(user); err != nil {
		// The derived username may already be taken; retry once with a
		// random suffix.
		user.Username = deriveUsername(identity.Email) + "_" + security.NewOpaqueID()[:6]
		if err := s.users.Create(user); err != nil {
			return nil, fmt.Errorf("create google user: %w", err)
		}
	}
	return user, nil
}

// issueSession is the shared tail of Login and GoogleLogin: mint the opaque
// session id and both tokens, then upsert the device session.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User, device string) (*LoginResult, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		device = DefaultDevice
	}
	sessionID := security.NewOpaqueID()

	refresh, err := s.jwt.SignRefreshToken(user.ID, sessionID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	access, err := s.jwt.SignAccessToken(user, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.sessions.UpsertByDevice(user.ID, device, sessionID, security.HashToken(refresh), now); err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}

	s.logger.InfoContext(ctx, "session issued", "user_id", user.ID, "device", device)
	return &LoginResult{
		User:      user,
		SessionID: sessionID,
		Tokens:    TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Refresh mints a new access token. The refresh token must verify
// cryptographically AND still match an active session row; a revoked or
// rotated token fails with Forbidden even when its signature is valid.
func (s *AuthService) Refresh(_ context.Context, rawRefreshToken string) (string, error) {
	user, claims, err := s.refreshHolder(rawRefreshToken)
	if err != nil {
		return "", err
	}
	session, err := s.sessions.FindActive(user.ID, claims.SessionID, security.HashToken(rawRefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", apperror.Forbidden("session is not active")
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if err := s.sessions.TouchLatestLogin(session.ID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("touch session: %w", err)
	}
	access, err := s.jwt.SignAccessToken(user, s.cfg.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Logout soft-revokes the matching session. A missing or mismatched session
// is not an error; the caller clears cookies either way.
func (s *AuthService) Logout(_ context.Context, rawRefreshToken string) error {
	user, claims, err := s.refreshHolder(rawRefreshToken)
	if err != nil {
		return err
	}
	session, err := s.sessions.Find(user.ID, claims.SessionID, security.HashToken(rawRefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}
	return s.sessions.Invalidate(session.ID)
}

func (s *AuthService) LogoutAll(ctx context.Context, rawRefreshToken string) error {
	user, _, err := s.refreshHolder(rawRefreshToken)
	if err != nil {
		return err
	}
	n, err := s.sessions.InvalidateAll(user.ID)
	if err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	s.logger.InfoContext(ctx, "all sessions invalidated", "user_id", user.ID, "count", n)
	return nil
}

// refreshHolder verifies the refresh token signature and loads its user.
func (s *AuthService) refreshHolder(rawRefreshToken string) (*domain.User, *security.Claims, error) {
	if rawRefreshToken == "" {
		return nil, nil, apperror.Unauthorized("refresh token is missing")
	}
	claims, err := s.jwt.ParseRefreshToken(rawRefreshToken)
	if err != nil {
		return nil, nil, apperror.Unauthorized("invalid refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, apperror.Unauthorized("invalid refresh token")
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, apperror.NotFound("user not found")
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, claims, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperror.BadRequest("email is required")
	}
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, err := security.NewRandomToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	hash := security.HashToken(raw)
	expiresAt := time.Now().UTC().Add(s.cfg.ResetTTL)
	if err := s.users.SetResetToken(user.ID, &hash, &expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendBaseURL, raw)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL, expiresAt); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(_ context.Context, token, newPassword, confirmPassword string) error {
	if token == "" || newPassword == "" || confirmPassword == "" {
		return apperror.BadRequest("token, newPassword and confirmPassword are required")
	}
	if newPassword != confirmPassword {
		return apperror.BadRequest("passwords do not match")
	}
	if !isStrongPassword(newPassword) {
		return apperror.BadRequest("password must be at least 8 characters with upper, lower, digit and special characters")
	}

	user, err := s.users.FindByResetTokenHash(security.HashToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.BadRequest("invalid or expired reset token")
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// Single use: clear the pair immediately after consumption.
	if err := s.users.SetResetToken(user.ID, nil, nil); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ChangePassword rotates the password and forces re-login everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return apperror.BadRequest("oldPassword, newPassword and confirmPassword are required")
	}
	if newPassword != confirmPassword {
		return apperror.BadRequest("passwords do not match")
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.HasPassword() {
		return apperror.BadRequest("account has no password to change")
	}
	if security.CheckPassword(newPassword, *user.PasswordHash) {
		return apperror.BadRequest("new password must differ from the old password")
	}
	if !security.CheckPassword(oldPassword, *user.PasswordHash) {
		return apperror.Unauthorized("old password is incorrect")
	}
	if !isStrongPassword(newPassword) {
		return apperror.BadRequest("password must be at least 8 characters with upper, lower, digit and special characters")
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := s.sessions.InvalidateAll(user.ID)
	if err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	s.logger.InfoContext(ctx, "password changed, sessions invalidated", "user_id", user.ID, "count", n)
	return nil
}

func (s *AuthService) SendVerification(ctx context.Context, userID uint) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, err := security.NewRandomToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	hash := security.HashToken(raw)
	expiresAt := time.Now().UTC().Add(s.cfg.VerifyTTL)
	if err := s.users.SetVerifyToken(user.ID, &hash, &expiresAt); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/user/verify-email/%s", s.cfg.BackendBaseURL, raw)
	if err := s.mailer.SendEmailVerification(ctx, user.Email, verifyURL, expiresAt); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

// VerifyEmail consumes the token and returns the frontend URL to redirect to.
func (s *AuthService) VerifyEmail(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", apperror.BadRequest("verification token is required")
	}
	user, err := s.users.FindByVerifyTokenHash(security.HashToken(token), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperror.BadRequest("invalid or expired verification token")
		}
		return "", fmt.Errorf("lookup verification token: %w", err)
	}
	if err := s.users.MarkVerified(user.ID); err != nil {
		return "", fmt.Errorf("mark verified: %w", err)
	}
	return s.cfg.FrontendBaseURL + "/email-verified", nil
}

// deriveUsername builds a username from the email local-part, constrained to
// the allowed charset and length.
func deriveUsername(email string) string {
	local := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if len(name) > 20 {
		name = name[:20]
	}
	for len(name) < 3 {
		name += "_"
	}
	return name
}
