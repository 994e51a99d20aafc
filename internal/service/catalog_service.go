package service

import (
	"errors"
	"fmt"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/repository"
)

type ProductInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" validate:"min=0"`
	Stock       int    `json:"stock" validate:"min=0"`
	ImageURL    string `json:"imageUrl"`
}

type CatalogServiceInterface interface {
	Create(input ProductInput, createdBy uint) (*domain.Product, error)
	Update(id uint, input ProductInput) (*domain.Product, error)
	Delete(id uint) error
	Get(id uint) (*domain.Product, error)
	List() ([]domain.Product, error)
}

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) Create(input ProductInput, createdBy uint) (*domain.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		CreatedBy:   createdBy,
	}
	if err := s.products.Create(product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) Update(id uint, input ProductInput) (*domain.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &domain.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}
	if err := s.products.Update(product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.Get(id)
}

func (s *CatalogService) Delete(id uint) error {
	if err := s.products.Delete(id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperror.NotFound("product not found")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *CatalogService) Get(id uint) (*domain.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) List() ([]domain.Product, error) {
	products, err := s.products.List()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
