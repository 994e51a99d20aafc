package service

import (
	"context"
	"testing"

	"go-commerce-service/internal/apperror"
)

func TestUserServiceProfileHidesCredentials(t *testing.T) {
	f := newAuthFixture(t)
	user := registerTestUser(t, f)
	svc := NewUserService(f.users, f.sessions)

	profile, err := svc.Profile(user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Email != "user1@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.PasswordHash != nil || profile.ResetTokenHash != nil {
		t.Fatal("public projection must not carry credentials")
	}
}

func TestUserServiceProfileNotFound(t *testing.T) {
	f := newAuthFixture(t)
	svc := NewUserService(f.users, f.sessions)
	_, err := svc.Profile(12345)
	if err == nil || apperror.From(err).Status != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestUserServiceSessionsListsDevices(t *testing.T) {
	f := newAuthFixture(t)
	user := registerTestUser(t, f)
	svc := NewUserService(f.users, f.sessions)

	for _, device := range []string{"desktop", "mobile"} {
		if _, err := f.svc.Login(context.Background(), LoginInput{Email: "user1@x.com", Password: "Str0ng!Pass", Device: device}); err != nil {
			t.Fatalf("login %s: %v", device, err)
		}
	}
	sessions, err := svc.Sessions(user.ID)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}
