package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-commerce-service/internal/http/middleware"
	"go-commerce-service/internal/http/response"
	"go-commerce-service/internal/service"
)

type ProductHandler struct {
	catalogSvc service.CatalogServiceInterface
}

func NewProductHandler(catalogSvc service.CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{catalogSvc: catalogSvc}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.List()
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "products loaded", products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.catalogSvc.Get(id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product loaded", product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "access token is missing")
		return
	}
	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	product, err := h.catalogSvc.Create(input, user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "product created", product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.FromError(w, r, errBadBody)
		return
	}
	product, err := h.catalogSvc.Update(id, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product updated", product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.catalogSvc.Delete(id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product deleted", nil)
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
