package handlers

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/baharkarakas/maverick-bank/internal/services"
)

type AuthHandler struct {
	Users     *services.UserService
	Customers *services.CustomerService
}

func NewAuthHandler(us *services.UserService, cs *services.CustomerService) *AuthHandler {
	return &AuthHandler{Users: us, Customers: cs}
}

// Register signs up a customer with a first account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Customers.Register(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Users.Login(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Users.Refresh(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// CreateUser adds staff. Admin only.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.StaffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.Users.CreateStaff(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}
