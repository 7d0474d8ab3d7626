package handlers

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/services"
	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

func NewCustomerHandler(cs *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Customers: cs}
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !canSeeCustomer(r, id) {
		forbidden(w)
		return
	}
	c, err := h.Customers.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !canSeeCustomer(r, id) {
		forbidden(w)
		return
	}
	as, err := h.Customers.Accounts(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, as)
}

// Delete removes the customer together with its accounts and user. Admin only.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Customers.Delete(r.Context(), id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) Account(w http.ResponseWriter, r *http.Request) {
	a, err := h.Customers.Account(r.Context(), chi.URLParam(r, "accountNumber"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if !canSeeCustomer(r, a.CustomerID) {
		// same answer as a missing account
		writeErr(w, r, services.ErrAccountNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}
