package identity_test

import (
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/identity"
	"github.com/dalemusser/deskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, c identity.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func claims(sub string, roles ...string) identity.Claims {
	c := identity.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	for _, r := range roles {
		c.Roles = append(c.Roles, identity.Authority{Authority: r})
	}
	return c
}

func TestFromToken_Unverified(t *testing.T) {
	tok := sign(t, "backend-secret", claims("alice", "ROLE_Admin"))

	s, err := identity.NewDecoder("").FromToken(`"` + tok + `"`)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Subject)
	assert.Equal(t, models.RoleAdmin, s.Role)
	assert.Equal(t, tok, s.Token)
	assert.True(t, s.IsAdmin())
}

func TestFromToken_Verified(t *testing.T) {
	tok := sign(t, "shared", claims("bob", "ROLE_User"))

	s, err := identity.NewDecoder("shared").FromToken("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, s.Role)

	_, err = identity.NewDecoder("other").FromToken(tok)
	assert.Error(t, err)
}

func TestFromToken_FallbackRoleClaim(t *testing.T) {
	c := claims("carol")
	c.Role = "admin"
	s, err := identity.NewDecoder("").FromToken(sign(t, "x", c))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, s.Role)
}

func TestFromToken_Rejects(t *testing.T) {
	d := identity.NewDecoder("")

	_, err := d.FromToken("  ")
	assert.ErrorIs(t, err, identity.ErrNoToken)

	_, err = d.FromToken("not-a-jwt")
	assert.Error(t, err)

	_, err = d.FromToken(sign(t, "x", claims("dave", "ROLE_Auditor")))
	assert.ErrorIs(t, err, identity.ErrNoRole)

	expired := claims("erin", "ROLE_User")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = d.FromToken(sign(t, "x", expired))
	assert.Error(t, err)
}

func TestSession_IsZero(t *testing.T) {
	assert.True(t, identity.Session{}.IsZero())
	assert.False(t, identity.Session{Token: "t"}.IsZero())
}
