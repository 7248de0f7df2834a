package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatcore-service/internal/repositories"
)

var (
	ErrNoToken      = errors.New("authentication token is required")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnknownUser  = errors.New("user not found")
)

// Identity is the resolved user attached to a connection or request.
type Identity struct {
	UserID   int
	Username string
}

type claims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator verifies the signed session credential and resolves it to a
// live user record. It fails closed: any verification or lookup problem
// rejects the caller.
type Authenticator struct {
	secret []byte
	users  repositories.UserRepository
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(secret string, users repositories.UserRepository) *Authenticator {
	return &Authenticator{secret: []byte(secret), users: users}
}

// VerifyRequest extracts the credential from the request (authToken/token
// cookie, falling back to a bearer header) and resolves it.
func (a *Authenticator) VerifyRequest(ctx context.Context, r *http.Request) (Identity, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return Identity{}, ErrNoToken
	}
	return a.VerifyToken(ctx, token)
}

// VerifyToken checks signature and expiry, then resolves the embedded user id
// against the user store.
func (a *Authenticator) VerifyToken(ctx context.Context, token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	user, err := a.users.GetUser(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, err
	}

	return Identity{UserID: user.ID, Username: user.Username}, nil
}

// SignToken issues a credential for the given user. The service itself never
// issues tokens in production; session issuance belongs to the auth
// subsystem. Kept for local development and tests.
func (a *Authenticator) SignToken(userID int, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(a.secret)
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("authToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
