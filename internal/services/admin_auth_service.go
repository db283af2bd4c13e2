package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds     = errors.New("invalid username or password")
	ErrInvalidToken = errors.New("invalid or expired admin token")
)

const tokenIssuer = "courtside"

// AdminAuth guards the single configured admin account.
type AdminAuth struct {
	user   string
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAdminAuth uses passwordHash when set, otherwise hashes password.
func NewAdminAuth(user, password, passwordHash, secret string, ttl time.Duration) (*AdminAuth, error) {
	if user == "" || secret == "" {
		return nil, errors.New("admin user and token secret are required")
	}
	hash := []byte(passwordHash)
	if passwordHash == "" {
		if password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &AdminAuth{user: user, hash: hash, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (a *AdminAuth) TTL() time.Duration { return a.ttl }

// Login checks the credential and issues a signed session token.
func (a *AdminAuth) Login(user, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	if !userOK || !passOK {
		return "", time.Time{}, ErrBadCreds
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   a.user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify returns the subject of a valid, unexpired token.
func (a *AdminAuth) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject != a.user {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
