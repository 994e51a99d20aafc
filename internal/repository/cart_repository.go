package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-commerce-service/internal/domain"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartRepository interface {
	// Upsert adds quantity to an existing (user, product) row or inserts it.
	Upsert(userID, productID uint, quantity int) error
	SetQuantity(userID, productID uint, quantity int) error
	Remove(userID, productID uint) error
	Clear(userID uint) error
	ListByUser(userID uint) ([]domain.CartItem, error)
}

type GormCartRepository struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) Upsert(userID, productID uint, quantity int) error {
	item := domain.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}),
	}).Create(&item).Error
}

func (r *GormCartRepository) SetQuantity(userID, productID uint, quantity int) error {
	res := r.db.Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *GormCartRepository) Remove(userID, productID uint) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *GormCartRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}

func (r *GormCartRepository) ListByUser(userID uint) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
