package service

import (
	"errors"
	"fmt"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/repository"
)

type CartServiceInterface interface {
	Add(userID, productID uint, quantity int) error
	SetQuantity(userID, productID uint, quantity int) error
	Remove(userID, productID uint) error
	Clear(userID uint) error
	List(userID uint) ([]domain.CartItem, error)
}

type CartService struct {
	cart     repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(cart repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{cart: cart, products: products}
}

// Add accumulates quantity onto the (user, product) row. The product must
// exist; quantity defaults to 1.
func (s *CartService) Add(userID, productID uint, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	if _, err := s.products.FindByID(productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperror.NotFound("product not found")
		}
		return fmt.Errorf("find product: %w", err)
	}
	if err := s.cart.Upsert(userID, productID, quantity); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}

// SetQuantity overwrites the quantity; zero removes the row.
func (s *CartService) SetQuantity(userID, productID uint, quantity int) error {
	if quantity < 0 {
		return apperror.BadRequest("quantity must not be negative")
	}
	if quantity == 0 {
		return s.Remove(userID, productID)
	}
	if err := s.cart.SetQuantity(userID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return apperror.NotFound("cart item not found")
		}
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

func (s *CartService) Remove(userID, productID uint) error {
	if err := s.cart.Remove(userID, productID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return apperror.NotFound("cart item not found")
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(userID uint) error {
	if err := s.cart.Clear(userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) List(userID uint) ([]domain.CartItem, error) {
	items, err := s.cart.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}
