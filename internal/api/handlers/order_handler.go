package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"crm-service/internal/engine"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

type OrderHandler struct {
	repo   repository.OrderRepository
	engine *engine.Engine
}

func NewOrderHandler(repo repository.OrderRepository, eng *engine.Engine) *OrderHandler {
	return &OrderHandler{repo: repo, engine: eng}
}

type OrderCreateRequest struct {
	CustomerID uuid.UUID   `json:"customer_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	OrderDate  *time.Time  `json:"order_date,omitempty"`
}

type OrderProductsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.Orders(criteriaFromQuery(r)).All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list orders", nil)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "order not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get order", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetByCustomer serves /customers/{id}/orders, newest first.
func (h *OrderHandler) GetByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	orders, err := h.repo.GetByCustomerID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get orders", nil)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Create inserts an order for an existing customer. The total is computed
// from the referenced products' current prices, never taken from the client.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if req.CustomerID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "customer_id is required", nil)
		return
	}

	o := models.Order{CustomerID: req.CustomerID}
	if req.OrderDate != nil {
		o.OrderDate = *req.OrderDate
	}

	if err := h.repo.Create(r.Context(), &o, req.ProductIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "customer not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to create order", nil)
		}
		return
	}

	w.Header().Set("Location", "/orders/"+o.OrderID.String())
	writeJSON(w, http.StatusCreated, o)
}

// SetProducts replaces the order's product set and recomputes its total.
func (h *OrderHandler) SetProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req OrderProductsRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.repo.SetProducts(r.Context(), id, req.ProductIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "order not found", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to update order products", nil)
		}
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get order", nil)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
