package handler

import (
	"encoding/json"
	"net/http"

	"go-commerce-service/internal/http/middleware"
	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/service"
)

type CartHandler struct {
	cartSvc service.CartServiceInterface
}

func NewCartHandler(cartSvc service.CartServiceInterface) *CartHandler {
	return &CartHandler{cartSvc: cartSvc}
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	items, err := h.cartSvc.List(user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "cart loaded", items)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	var body struct {
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	if err := h.cartSvc.Add(user.ID, body.ProductID, body.Quantity); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "added to cart", nil)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	productID, err := pathID(r, "productId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	if err := h.cartSvc.SetQuantity(user.ID, productID, body.Quantity); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "cart updated", nil)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	productID, err := pathID(r, "productId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.cartSvc.Remove(user.ID, productID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "removed from cart", nil)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	if err := h.cartSvc.Clear(user.ID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "cart cleared", nil)
}
