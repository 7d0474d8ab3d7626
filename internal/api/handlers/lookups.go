package handlers

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/services"
)

type LookupHandler struct {
	Lookups *services.LookupService
}

func NewLookupHandler(ls *services.LookupService) *LookupHandler { return &LookupHandler{Lookups: ls} }

func (h *LookupHandler) TransactionTypes(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Lookups.TransactionTypes(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}

func (h *LookupHandler) AccountTypes(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Lookups.AccountTypes(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ts)
}
