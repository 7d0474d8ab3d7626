package handlers

import (
	"net/http"

	"github.com/baharkarakas/maverick-bank/internal/middleware"
	"github.com/baharkarakas/maverick-bank/internal/models"
)

func isStaff(u middleware.UserCtx) bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleEmployee
}

// canSeeCustomer lets staff see every customer and customers only themselves.
func canSeeCustomer(r *http.Request, customerID int64) bool {
	u, ok := middleware.FromCtx(r.Context())
	if !ok {
		return false
	}
	return isStaff(u) || (u.Role == models.RoleCustomer && u.SubjectID == customerID)
}
