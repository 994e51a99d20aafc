package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-commerce-service/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Product{},
		&domain.CartItem{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username, email string) *domain.User {
	t.Helper()
	hash := "bcrypt-hash"
	user := &domain.User{Username: username, Email: email, Name: "Test User", PasswordHash: &hash, Role: domain.RoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
