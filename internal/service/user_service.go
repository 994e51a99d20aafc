package service

import (
	"errors"
	"fmt"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/repository"
)

type UserServiceInterface interface {
	Profile(userID uint) (*domain.User, error)
	Sessions(userID uint) ([]domain.Session, error)
}

// UserService serves the authenticated self-service endpoints: profile and
// device session listing.
type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func NewUserService(users repository.UserRepository, sessions repository.SessionRepository) *UserService {
	return &UserService{users: users, sessions: sessions}
}

func (s *UserService) Profile(userID uint) (*domain.User, error) {
	user, err := s.users.FindByIDPublic(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *UserService) Sessions(userID uint) ([]domain.Session, error) {
	sessions, err := s.sessions.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
