package database

import (
	"gorm.io/gorm"

	"go-commerce-service/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Product{},
		&domain.CartItem{},
	)
}
