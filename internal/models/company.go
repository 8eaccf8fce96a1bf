package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidAddress is returned when an address string lacks the "#" separator
var ErrInvalidAddress = errors.New("address must look like \"Calle 10 # 20 - 30\"")

var roadTypes = []string{"Calle", "Carrera", "Avenida", "Transversal", "Diagonal", "Circular", "Autopista"}

// Address is a Colombian street address: road type, main road, cross road and complement
type Address struct {
	ID         int64  `json:"id" db:"id"`
	RoadType   string `json:"roadType" db:"road_type" binding:"omitempty"`
	MainRoad   string `json:"mainRoad" db:"main_road" binding:"required"`
	CrossRoad  string `json:"crossRoad" db:"cross_road" binding:"required"`
	Complement string `json:"complement" db:"complement"`
}

// ParseAddress splits "Carrera 7 # 71 - 21" into its parts.
// Without a known road type prefix the road type defaults to Calle.
func ParseAddress(raw string) (Address, error) {
	main, rest, ok := strings.Cut(raw, "#")
	main = strings.TrimSpace(main)
	if !ok || main == "" {
		return Address{}, ErrInvalidAddress
	}

	cross, complement, _ := strings.Cut(rest, "-")
	address := Address{
		RoadType:   "Calle",
		MainRoad:   main,
		CrossRoad:  strings.TrimSpace(cross),
		Complement: strings.TrimSpace(complement),
	}
	if address.CrossRoad == "" {
		return Address{}, ErrInvalidAddress
	}

	for _, roadType := range roadTypes {
		prefix := roadType + " "
		if len(main) > len(prefix) && strings.EqualFold(main[:len(prefix)], prefix) {
			address.RoadType = roadType
			address.MainRoad = strings.TrimSpace(main[len(prefix):])
			break
		}
	}

	return address, nil
}

// String formats the address the way it is written on envelopes
func (a Address) String() string {
	roadType := a.RoadType
	if roadType == "" {
		roadType = "Calle"
	}
	s := fmt.Sprintf("%s %s # %s", roadType, a.MainRoad, a.CrossRoad)
	if a.Complement != "" {
		s += " - " + a.Complement
	}
	return s
}

// Company is a coworking operator
type Company struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	TaxID       string    `json:"nit" db:"tax_id"`
	Phone       string    `json:"phone" db:"phone"`
	Email       string    `json:"email" db:"email"`
	AddressID   int64     `json:"addressId" db:"address_id"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}

// CompanyAdmin is the account that manages a company's sites
type CompanyAdmin struct {
	ID           int64     `json:"id" db:"id"`
	CompanyID    int64     `json:"companyId" db:"company_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RegisterCompanyRequest is the body of POST /api/admins/register
type RegisterCompanyRequest struct {
	Name    string `json:"name" binding:"required,excludesall=\r\n"`
	TaxID   string `json:"nit" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
}

// RegisterCompanyResponse is returned once the company and its admin exist
type RegisterCompanyResponse struct {
	CompanyID          int64 `json:"companyId"`
	AdminID            int64 `json:"adminId"`
	CredentialsEmailed bool  `json:"credentialsEmailed"`
}

// CompanyApplicationRequest is the body of POST /api/users/register-admin.
// It is forwarded to the system mailbox for manual review.
type CompanyApplicationRequest struct {
	ContactName string `json:"contactName" binding:"required,excludesall=\r\n"`
	CompanyName string `json:"companyName" binding:"required,excludesall=\r\n"`
	TaxID       string `json:"nit" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Address     string `json:"address" binding:"required"`
}
