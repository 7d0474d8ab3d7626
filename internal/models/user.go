package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
	RoleCustomer = "Customer"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	if len(u.Username) < 3 {
		return errors.New("username too short")
	}
	switch u.Role {
	case RoleAdmin, RoleEmployee, RoleCustomer:
	case "":
		u.Role = RoleCustomer
	default:
		return errors.New("unknown role")
	}
	return nil
}
