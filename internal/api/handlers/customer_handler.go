package handlers

import (
	"errors"
	"net/http"

	"crm-service/internal/engine"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

type CustomerHandler struct {
	repo   repository.CustomerRepository
	engine *engine.Engine
}

func NewCustomerHandler(repo repository.CustomerRepository, eng *engine.Engine) *CustomerHandler {
	return &CustomerHandler{repo: repo, engine: eng}
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CustomerUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BulkCreateRequest struct {
	Customers []CustomerCreateRequest `json:"customers"`
}

type BulkCreateResponse struct {
	Created []models.Customer      `json:"created"`
	Errors  []repository.BulkError `json:"errors"`
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.engine.Customers(criteriaFromQuery(r)).All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list customers", nil)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	customer, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "customer not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to get customer", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	c := models.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := h.repo.Create(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			writeError(w, http.StatusConflict, "duplicate", "email already in use", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to create customer", nil)
		}
		return
	}

	w.Header().Set("Location", "/customers/"+c.ID.String())
	writeJSON(w, http.StatusCreated, c)
}

// BulkCreate inserts each row independently: valid rows land, invalid rows
// come back in the errors list with their batch index.
func (h *CustomerHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	customers := make([]models.Customer, len(req.Customers))
	for i, row := range req.Customers {
		customers[i] = models.Customer{
			Name:  row.Name,
			Email: row.Email,
			Phone: row.Phone,
		}
	}

	created, bulkErrs := h.repo.BulkCreate(r.Context(), customers)

	writeJSON(w, http.StatusOK, BulkCreateResponse{
		Created: created,
		Errors:  bulkErrs,
	})
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req CustomerUpdateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	c := models.Customer{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := h.repo.Update(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "customer not found", nil)
		case errors.Is(err, repository.ErrDuplicate):
			writeError(w, http.StatusConflict, "duplicate", "email already in use", nil)
		case errors.Is(err, repository.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to update customer", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "customer not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete customer", nil)
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
