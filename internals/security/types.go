package security

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"

	// OperatorSubject is the subject of tokens minted for the single
	// configured operator.
	OperatorSubject = "operator"
)

type RequestClaims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}
