package model

import (
	"github.com/google/uuid"
)

// Role is the self-asserted role a user registers and logs in with.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDoctor     Role = "DOCTOR"
	RolePatient    Role = "PATIENT"
	RoleLab        Role = "LAB"
	RolePharmacist Role = "PHARMACIST"
	RoleInsurer    Role = "INSURER"
	RoleResearcher Role = "RESEARCHER"
)

// Roles lists every role accepted at registration.
var Roles = []Role{
	RoleAdmin, RoleDoctor, RolePatient, RoleLab,
	RolePharmacist, RoleInsurer, RoleResearcher,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User status constants. PENDING users are created by registration and
// move to ACTIVE or REJECTED through admin review, never back.
const (
	UserStatusPending  = "PENDING"
	UserStatusActive   = "ACTIVE"
	UserStatusRejected = "REJECTED"
)

// User is a registered account. Users are never deleted; identity for
// login purposes is the (email, role) pair.
type User struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Status string    `json:"status"`
}

// SeedAdminID is the fixed id of the hardcoded admin account that is
// ACTIVE from process start.
var SeedAdminID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SeedAdmin returns the bootstrap administrator account.
func SeedAdmin() *User {
	return &User{
		ID:     SeedAdminID,
		Name:   "System Admin",
		Email:  "admin@medchain.local",
		Role:   RoleAdmin,
		Status: UserStatusActive,
	}
}

// RegisterRequest represents registration parameters.
type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
}

// LoginRequest represents login parameters. Role is a claimed
// credential, not verified against a secret; this is demo auth only.
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
