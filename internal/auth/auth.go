package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

type ctxKey int

// Key is used to store/retrieve the Claims value from a context.Context.
const Key ctxKey = 1

const (
	RoleAdmin     = "ADMIN"
	RoleDashboard = "DASHBOARD"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	UserId    int    `json:"user_id"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role"`
}

// Authorized returns true if the claims has at least one of the provided roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

type Auth struct {
	key []byte
}

func NewAuth(key string) *Auth {
	return &Auth{key: []byte(key)}
}

// GenerateTokens builds an access/refresh token pair signed with the service key.
func (a *Auth) GenerateTokens(claims Claims) (string, string, error) {
	claims.ExpiresAt = time.Now().Add(12 * time.Hour).Unix()
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", "", errors.Wrap(err, "signing access token")
	}

	claims.ExpiresAt = time.Now().Add(30 * 24 * time.Hour).Unix()
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", "", errors.Wrap(err, "signing refresh token")
	}

	return accessToken, refreshToken, nil
}

// ValidateToken recreates the Claims that were used to generate a token.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.key, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	return claims, nil
}
