// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Claims identify the account a token was issued to.
type Claims struct {
	AccountID string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

type tokenClaims struct {
	Claims
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	// Secret is the HMAC signing key. Required.
	Secret string
	// Issuer is written to and required in the iss claim when non-empty.
	Issuer string
	// TTL bounds token lifetime. Zero issues tokens without an exp claim.
	TTL time.Duration
}

// TokenIssuer signs and verifies HS256 bearer tokens. It holds no state
// beyond its configuration and performs no I/O.
type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer validates cfg and returns an issuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, oops.Code("AUTH_TOKEN_SECRET_MISSING").Errorf("token signing secret is required")
	}
	if cfg.TTL < 0 {
		return nil, oops.Code("AUTH_TOKEN_TTL_INVALID").With("ttl", cfg.TTL.String()).Errorf("token ttl cannot be negative")
	}
	return &TokenIssuer{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token carrying claims.
func (i *TokenIssuer) Issue(claims Claims) (string, error) {
	now := i.now()
	registered := jwt.RegisteredClaims{
		Issuer:   i.issuer,
		Subject:  claims.AccountID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if i.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{Claims: claims, RegisteredClaims: registered})
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").With("account_id", claims.AccountID).Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, issuer and expiry of token and
// returns its claims. Every failure wraps ErrInvalidToken.
func (i *TokenIssuer) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		return nil, oops.Code(CodeInvalidToken).
			Public(MsgInvalidToken).
			Wrap(errors.Join(ErrInvalidToken, err))
	}
	if parsed.AccountID == "" {
		return nil, oops.Code(CodeInvalidToken).
			Public(MsgInvalidToken).
			Wrap(errors.Join(ErrInvalidToken, errors.New("token has no account id")))
	}

	claims := parsed.Claims
	return &claims, nil
}
