package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RoleAdmin is the role allowed to change the schema catalog
	RoleAdmin = "admin"
	// ContextKeyUser is the gin context key holding the caller's UserSession
	ContextKeyUser = "user"
)

// UserSession represents the caller identity carried in the token
type UserSession struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the session may modify table definitions
func (u UserSession) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Claims represents JWT claims
type Claims struct {
	User UserSession `json:"user"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens issued by the identity service
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier. An empty secret disables verification.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether tokens are checked at all
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// ValidateToken validates and parses a JWT token
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
