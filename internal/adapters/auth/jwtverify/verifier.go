package jwtverify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign-grants/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token invalid")
)

type Config struct {
	Secret string
	// Opcional: si viene, el claim iss debe coincidir.
	Issuer string
	Now    func() time.Time
}

// Verifier implementa auth.AuthVerifier con tokens HS256 firmados por el IAM de la campaña.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

func New(cfg Config) *Verifier {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    now,
	}
}

func (v *Verifier) IsConfigured() bool {
	return v != nil && len(v.secret) > 0
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !v.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return auth.Claims{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}

	return auth.Claims{
		UserID: userID,
		Email:  strings.TrimSpace(parsed.Email),
		Role:   strings.TrimSpace(parsed.Role),
	}, nil
}
