package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-commerce-service/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	// UpsertByDevice inserts a session for (userID, device) or, when the
	// device already has one, overwrites session id, token hash and
	// latest login in a single statement.
	UpsertByDevice(userID uint, device, sessionID, refreshTokenHash string, now time.Time) (*domain.Session, error)
	FindActive(userID uint, sessionID, refreshTokenHash string) (*domain.Session, error)
	Find(userID uint, sessionID, refreshTokenHash string) (*domain.Session, error)
	ListByUser(userID uint) ([]domain.Session, error)
	TouchLatestLogin(id uint, now time.Time) error
	Invalidate(id uint) error
	InvalidateAll(userID uint) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) UpsertByDevice(userID uint, device, sessionID, refreshTokenHash string, now time.Time) (*domain.Session, error) {
	session := domain.Session{
		UserID:           userID,
		Device:           device,
		SessionID:        sessionID,
		RefreshTokenHash: &refreshTokenHash,
		FirstLogin:       now,
		LatestLogin:      now,
		IsActive:         true,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "device"}},
		DoUpdates: clause.Assignments(map[string]any{
			"session_id":         sessionID,
			"refresh_token_hash": refreshTokenHash,
			"latest_login":       now,
			"is_active":          true,
			"updated_at":         now,
		}),
	}).Create(&session).Error
	if err != nil {
		return nil, err
	}

	var stored domain.Session
	if err := r.db.Where("user_id = ? AND device = ?", userID, device).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *GormSessionRepository) FindActive(userID uint, sessionID, refreshTokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.
		Where("user_id = ? AND session_id = ? AND refresh_token_hash = ? AND is_active = ?",
			userID, sessionID, refreshTokenHash, true).
		First(&session).Error
	return r.one(&session, err)
}

func (r *GormSessionRepository) Find(userID uint, sessionID, refreshTokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.
		Where("user_id = ? AND session_id = ? AND refresh_token_hash = ?",
			userID, sessionID, refreshTokenHash).
		First(&session).Error
	return r.one(&session, err)
}

func (r *GormSessionRepository) ListByUser(userID uint) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.Where("user_id = ?", userID).Order("latest_login desc").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) TouchLatestLogin(id uint, now time.Time) error {
	res := r.db.Model(&domain.Session{}).Where("id = ?", id).Update("latest_login", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Invalidate soft-revokes one session. A missing row is not an error — the
// logout flow treats a mismatched session as already gone.
func (r *GormSessionRepository) Invalidate(id uint) error {
	return r.db.Model(&domain.Session{}).Where("id = ?", id).Updates(map[string]any{
		"is_active":          false,
		"refresh_token_hash": nil,
	}).Error
}

func (r *GormSessionRepository) InvalidateAll(userID uint) (int64, error) {
	res := r.db.Model(&domain.Session{}).Where("user_id = ?", userID).Updates(map[string]any{
		"is_active":          false,
		"refresh_token_hash": nil,
	})
	return res.RowsAffected, res.Error
}

func (r *GormSessionRepository) one(session *domain.Session, err error) (*domain.Session, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
