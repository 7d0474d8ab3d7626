package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/baharkarakas/maverick-bank/internal/api/httpx"
	"github.com/baharkarakas/maverick-bank/internal/logger"
	"github.com/baharkarakas/maverick-bank/internal/services"
	"github.com/go-chi/chi/v5"
)

const maxBody = 1 << 20

type errMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errMappings = []errMapping{
	{services.ErrInsufficientBalance, http.StatusBadRequest, "insufficient_balance"},
	{services.ErrUnknownTransactionType, http.StatusBadRequest, "unknown_transaction_type"},
	{services.ErrMissingDestination, http.StatusBadRequest, "missing_destination"},
	{services.ErrSameAccount, http.StatusBadRequest, "same_account"},
	{services.ErrAccountTypeNotFound, http.StatusBadRequest, "unknown_account_type"},
	{services.ErrBalanceLimit, http.StatusBadRequest, "balance_limit"},
	{services.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{services.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{services.ErrCustomerNotFound, http.StatusNotFound, "customer_not_found"},
	{services.ErrTransactionNotFound, http.StatusNotFound, "transaction_not_found"},
	{services.ErrNoTransactionsFound, http.StatusNotFound, "no_transactions_found"},
	{services.ErrAccountNotOwned, http.StatusForbidden, "forbidden"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrUsernameTaken, http.StatusConflict, "username_taken"},
	{services.ErrAccountNumberTaken, http.StatusConflict, "account_number_taken"},
	{services.ErrCustomerHasTransactions, http.StatusConflict, "customer_has_transactions"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
}

// writeErr maps service errors to HTTP responses. Unknown errors are logged
// and reported without detail.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", verr.Fields)
		return
	}
	for _, m := range errMappings {
		if errors.Is(err, m.target) {
			httpx.WriteError(w, m.status, m.code, err.Error(), nil)
			return
		}
	}
	logger.FromContext(r.Context(), slog.Default()).Error("request failed", "path", r.URL.Path, "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func forbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "forbidden", "not allowed for this caller", nil)
}

func badRequest(w http.ResponseWriter, msg string) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", msg, nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", msg, nil)
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
