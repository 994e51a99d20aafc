package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-commerce-service/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

// publicColumns excludes password, token hashes and expiries; used wherever
// a user is loaded on behalf of a request rather than an auth flow.
var publicColumns = []string{
	"id", "username", "email", "name", "avatar_url", "role", "is_verified", "created_at", "updated_at",
}

type UserRepository interface {
	Create(user *domain.User) error
	Update(user *domain.User) error
	Delete(id uint) error
	FindByID(id uint) (*domain.User, error)
	FindByIDPublic(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	FindByEmailOrUsername(email, username string) (*domain.User, error)
	FindByGoogleID(googleID string) (*domain.User, error)
	FindByResetTokenHash(hash string, now time.Time) (*domain.User, error)
	FindByVerifyTokenHash(hash string, now time.Time) (*domain.User, error)
	UpdatePassword(id uint, passwordHash string) error
	SetResetToken(id uint, hash *string, expiresAt *time.Time) error
	SetVerifyToken(id uint, hash *string, expiresAt *time.Time) error
	MarkVerified(id uint) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *domain.User) error {
	user.Email = normalize(user.Email)
	user.Username = normalize(user.Username)
	return r.db.Create(user).Error
}

func (r *GormUserRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) Delete(id uint) error {
	// Sessions go with the account.
	if err := r.db.Where("user_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
		return err
	}
	res := r.db.Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.First(&user, id), &user)
}

func (r *GormUserRepository) FindByIDPublic(id uint) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Select(publicColumns).First(&user, id), &user)
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Where("email = ?", normalize(email)).First(&user), &user)
}

func (r *GormUserRepository) FindByEmailOrUsername(email, username string) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Where("email = ? OR username = ?", normalize(email), normalize(username)).First(&user), &user)
}

func (r *GormUserRepository) FindByGoogleID(googleID string) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Where("google_id = ?", googleID).First(&user), &user)
}

func (r *GormUserRepository) FindByResetTokenHash(hash string, now time.Time) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Where("reset_token_hash = ? AND reset_expires_at > ?", hash, now).First(&user), &user)
}

func (r *GormUserRepository) FindByVerifyTokenHash(hash string, now time.Time) (*domain.User, error) {
	var user domain.User
	return r.one(r.db.Where("verify_token_hash = ? AND verify_expires_at > ?", hash, now).First(&user), &user)
}

func (r *GormUserRepository) UpdatePassword(id uint, passwordHash string) error {
	return r.update(id, map[string]any{"password_hash": passwordHash})
}

func (r *GormUserRepository) SetResetToken(id uint, hash *string, expiresAt *time.Time) error {
	return r.update(id, map[string]any{"reset_token_hash": hash, "reset_expires_at": expiresAt})
}

func (r *GormUserRepository) SetVerifyToken(id uint, hash *string, expiresAt *time.Time) error {
	return r.update(id, map[string]any{"verify_token_hash": hash, "verify_expires_at": expiresAt})
}

func (r *GormUserRepository) MarkVerified(id uint) error {
	return r.update(id, map[string]any{
		"is_verified":       true,
		"verify_token_hash": nil,
		"verify_expires_at": nil,
	})
}

func (r *GormUserRepository) update(id uint, values map[string]any) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) one(tx *gorm.DB, user *domain.User) (*domain.User, error) {
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return user, nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
