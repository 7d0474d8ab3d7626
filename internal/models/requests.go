package models

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LoginResult.ID is the role-specific id: the customer id for customers,
// the user id for staff.
type LoginResult struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type StaffRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=Admin Employee"`
}

type RegisterCustomerRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=64"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	FullName      string `json:"fullName" validate:"required,max=128"`
	Email         string `json:"email" validate:"required,email"`
	PhoneNumber   string `json:"phoneNumber" validate:"omitempty,max=32"`
	Address       string `json:"address" validate:"omitempty,max=256"`
	AccountNumber string `json:"accountNumber" validate:"required,alphanum,max=32"`
	AccountTypeID int    `json:"accountTypeId" validate:"required,gt=0"`
}

type RegisterCustomerResult struct {
	Customer Customer `json:"customer"`
	Account  Account  `json:"account"`
}
