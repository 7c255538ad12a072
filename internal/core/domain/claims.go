package domain

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified content of a bearer credential. User holds the
// identity payload exactly as the issuer encoded it.
type Claims struct {
	User json.RawMessage `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// HasUser reports whether the credential carried a non-null user payload.
func (c *Claims) HasUser() bool {
	if c == nil || len(c.User) == 0 {
		return false
	}
	return string(c.User) != "null"
}
