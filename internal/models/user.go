package models

import "time"

// User is a customer account that books coworking sites
type User struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Credentials is a login candidate from either account table
type Credentials struct {
	ID           int64  `db:"id"`
	Role         string `db:"role"`
	Email        string `db:"email"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`
	CompanyID    *int64 `db:"company_id"`
}

// Profile is what /me returns for either account kind
type Profile struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	CompanyID *int64 `json:"companyId,omitempty"`
}

// RegisterUserRequest is the body of POST /api/users/register
type RegisterUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse is returned alongside the session cookie
type LoginResponse struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}
