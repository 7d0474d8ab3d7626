package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/middleware"
	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/baharkarakas/maverick-bank/internal/services"
)

type TransactionHandler struct {
	Processor *services.TransactionProcessor
	Query     *services.TransactionQueryService
}

func NewTransactionHandler(p *services.TransactionProcessor, q *services.TransactionQueryService) *TransactionHandler {
	return &TransactionHandler{Processor: p, Query: q}
}

// Create runs a transaction. Customers may only act for themselves; employees
// are recorded on the ledger entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, _ := middleware.FromCtx(r.Context())
	switch u.Role {
	case models.RoleCustomer:
		if req.CustomerID != u.SubjectID {
			forbidden(w)
			return
		}
	case models.RoleEmployee:
		req.EmployeeID = &u.UserID
	}

	res, err := h.Processor.Execute(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Query.ListAll(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, responses(ts))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Query.GetByID(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	// other customers' entries look missing
	if u, _ := middleware.FromCtx(r.Context()); !isStaff(u) && (t.CustomerID == nil || *t.CustomerID != u.SubjectID) {
		writeErr(w, r, services.ErrTransactionNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t.Response())
}

func (h *TransactionHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	cid, ok := h.customer(w, r)
	if !ok {
		return
	}
	ts, err := h.Query.ListByCustomer(r.Context(), cid)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, responses(ts))
}

// Filter accepts transactionTypeId, fromDate and toDate. Dates are RFC3339 or
// YYYY-MM-DD; a date-only toDate covers the whole day.
func (h *TransactionHandler) Filter(w http.ResponseWriter, r *http.Request) {
	cid, ok := h.customer(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	var kind *models.Kind
	if v := q.Get("transactionTypeId"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(w, "transactionTypeId must be a positive integer")
			return
		}
		k := models.Kind(n)
		kind = &k
	}
	from, err := parseDate(q.Get("fromDate"), false)
	if err != nil {
		badRequest(w, "fromDate: "+err.Error())
		return
	}
	to, err := parseDate(q.Get("toDate"), true)
	if err != nil {
		badRequest(w, "toDate: "+err.Error())
		return
	}

	ts, err := h.Query.ListByCustomerFiltered(r.Context(), cid, kind, from, to)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, responses(ts))
}

func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	cid, ok := h.customer(w, r)
	if !ok {
		return
	}
	ts, err := h.Query.ListRecentByCustomer(r.Context(), cid)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, responses(ts))
}

func (h *TransactionHandler) customer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	cid, ok := idParam(w, r, "customerId")
	if !ok {
		return 0, false
	}
	if !canSeeCustomer(r, cid) {
		forbidden(w)
		return 0, false
	}
	return cid, true
}

func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func responses(ts []models.Transaction) []models.TransactionResponse {
	out := make([]models.TransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Response())
	}
	return out
}
