package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenUsecase issues and checks the bearer tokens that guard the API.
type TokenUsecase interface {
	Issue(subject string, ttl time.Duration) (string, error)
	// ValidateToken returns the subject of a valid token
	ValidateToken(tokenString string) (string, error)
}

type tokenUsecase struct {
	secret []byte
	now    func() time.Time
}

func NewTokenUsecase(secret string) TokenUsecase {
	return &tokenUsecase{secret: []byte(secret), now: time.Now}
}

func (u *tokenUsecase) Issue(subject string, ttl time.Duration) (string, error) {
	if len(u.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := u.now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(u.secret)
}

func (u *tokenUsecase) ValidateToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return u.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
