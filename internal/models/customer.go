package models

import "time"

type Customer struct {
	ID          int64     `json:"customerId"`
	UserID      int64     `json:"userId"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
}
