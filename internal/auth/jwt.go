package auth

import (
	"sync"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/types"
)

var (
	jwtAuth     *jwtauth.JWTAuth
	jwtAuthOnce sync.Once
)

func JWTAuth() *jwtauth.JWTAuth {
	jwtAuthOnce.Do(func() {
		jwtAuth = jwtauth.New("HS256", env.JWTSecret(), nil)
	})
	return jwtAuth
}

// NewSessionToken issues the bearer token returned by login and signup. The
// token carries no authorization state beyond the account identity, so
// revocation works by comparing its issue time against the account's
// token_invalid_before marker.
func NewSessionToken(user types.UserAccount) (jwt.Token, string, error) {
	claims := map[string]any{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, env.SessionTokenValidDuration())
	return JWTAuth().Encode(claims)
}
