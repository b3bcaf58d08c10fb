package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Roles accepted on the read API.
const (
	RoleAgent      = "agent"
	RoleSupervisor = "supervisor"
)

// Claims represents JWT custom claims for read API callers
type Claims struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
