package repository

import (
	"errors"

	"gorm.io/gorm"

	"go-commerce-service/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Create(product *domain.Product) error
	Update(product *domain.Product) error
	Delete(id uint) error
	FindByID(id uint) (*domain.Product, error)
	List() ([]domain.Product, error)
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	return r.db.Create(product).Error
}

func (r *GormProductRepository) Update(product *domain.Product) error {
	res := r.db.Model(&domain.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price_cents": product.PriceCents,
		"stock":       product.Stock,
		"image_url":   product.ImageURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) List() ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.Order("created_at desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
