package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// ContractorID is required for the contractor role and empty otherwise;
// operators pick a contractor per request.
type Claims struct {
	jwt.RegisteredClaims

	UserID       string    `json:"user_id"`
	ContractorID string    `json:"contractor_id,omitempty"`
	Role         string    `json:"role"`
	TokenType    TokenType `json:"token_type"`
}

// Identity is the authenticated caller.
type Identity struct {
	UserID       string
	ContractorID string
	Role         string
}
