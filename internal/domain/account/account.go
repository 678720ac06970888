package account

import (
	"errors"
	"time"
)

// Role is the stored account role. It drives every authorization
// decision; the value inside an issued token is never consulted.
type Role string

const (
	RoleBuyer   Role = "BUYER"
	RoleRealtor Role = "REALTOR"
	RoleAdmin   Role = "ADMIN"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps an inbound role string (path param, config value) to a
// Role. Matching is exact; the enum values are uppercase on the wire.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleRealtor, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the resolved, store-verified shape attached to an
// authorized request. It is what handlers see; the hash never leaves
// the repo layer.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

func (a Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Phone: a.Phone,
		Role:  a.Role,
	}
}
