package testutil

import (
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
)

// TestJWTSecret signs tokens built by SignToken.
const TestJWTSecret = "test-jwt-secret"

// SignToken returns an HS256 token for login carrying role the way the
// backend lays it out ({"roles":[{"authority":"ROLE_<role>"}]}).
func SignToken(login string, role models.Role, ttl time.Duration) string {
	c := identity.Claims{
		Roles: []identity.Authority{{Authority: "ROLE_" + string(role)}},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(TestJWTSecret))
	if err != nil {
		panic(err)
	}
	return s
}

// UseJWT makes be answer /authenticate with signed tokens.
func UseJWT(be *Backend) {
	be.TokenIssuer = func(u models.User) string {
		return SignToken(u.Login, u.Role, time.Hour)
	}
}
