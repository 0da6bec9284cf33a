// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/tonearm/accounts/internal/account"
	"github.com/tonearm/accounts/internal/validation"
)

// TokenCodec issues and verifies bearer tokens. *TokenIssuer implements it.
type TokenCodec interface {
	Issue(claims Claims) (string, error)
	Verify(token string) (*Claims, error)
}

var _ TokenCodec = (*TokenIssuer)(nil)

// SignupRequest is a signup as received. A nil field was not sent.
type SignupRequest struct {
	Username             *string
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

func (r SignupRequest) payload() validation.Payload {
	return buildPayload(map[string]*string{
		validation.FieldUsername:             r.Username,
		validation.FieldEmail:                r.Email,
		validation.FieldPassword:             r.Password,
		validation.FieldPasswordConfirmation: r.PasswordConfirmation,
	})
}

// SigninRequest is a signin as received. A nil field was not sent.
type SigninRequest struct {
	Email    *string
	Password *string
}

func (r SigninRequest) payload() validation.Payload {
	return buildPayload(map[string]*string{
		validation.FieldEmail:    r.Email,
		validation.FieldPassword: r.Password,
	})
}

func buildPayload(fields map[string]*string) validation.Payload {
	p := validation.Payload{}
	for name, v := range fields {
		if v != nil {
			p[name] = *v
		}
	}
	return p
}

// Session is the result of a successful signup or signin. It never carries
// the password digest.
type Session struct {
	Token      string
	AccountID  string
	Username   string
	Email      string
	Preference account.Preference
}

// Service runs the signup and signin flows.
type Service struct {
	accounts  account.Store
	hasher    PasswordHasher
	tokens    TokenCodec
	validator *validation.Validator
	logger    *slog.Logger
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithValidator replaces the default payload validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *Service) { s.validator = v }
}

// NewService creates a Service. It hashes one random password up front so
// signins for unknown emails can verify against a digest of the same cost.
func NewService(accounts account.Store, hasher PasswordHasher, tokens TokenCodec, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("account store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("token codec is required")
	}

	s := &Service{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		validator: validation.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := hasher.Hash(rand.Text())
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").With("operation", "hash dummy password").Wrap(err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Signup validates req, stores a new account and returns a session for it.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	if err := s.validate(validation.Signup, req.payload()); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(*req.Password)
	if err != nil {
		return nil, oops.Code(CodeSignupFailed).With("operation", "hash password").Wrap(err)
	}

	acc, err := account.NewAccount(*req.Username, *req.Email, digest)
	if err != nil {
		return nil, oops.Code(CodeSignupFailed).With("operation", "build account").Wrap(err)
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateEmail):
			s.logger.InfoContext(ctx, "signup rejected", "reason", "duplicate email")
			return nil, oops.Code(account.CodeDuplicateEmail).Public(MsgDuplicateEmail).Wrap(err)
		case errors.Is(err, account.ErrDuplicateUsername):
			s.logger.InfoContext(ctx, "signup rejected", "reason", "duplicate username")
			return nil, oops.Code(account.CodeDuplicateUsername).Public(MsgDuplicateUsername).Wrap(err)
		default:
			return nil, oops.Code(CodeSignupFailed).With("operation", "create account").Wrap(err)
		}
	}

	session, err := s.issue(acc)
	if err != nil {
		return nil, oops.Code(CodeSignupFailed).With("operation", "issue token").Wrap(err)
	}

	s.logger.InfoContext(ctx, "account created", "account_id", session.AccountID)
	return session, nil
}

// Signin checks the credentials in req and returns a session. An unknown
// email and a wrong password produce the same error.
func (s *Service) Signin(ctx context.Context, req SigninRequest) (*Session, error) {
	if err := s.validate(validation.Signin, req.payload()); err != nil {
		return nil, err
	}

	acc, err := s.accounts.FindByEmail(ctx, *req.Email)
	if err != nil {
		return nil, oops.Code(CodeSigninFailed).With("operation", "find account by email").Wrap(err)
	}

	digest := s.dummyHash
	if acc != nil {
		digest = acc.PasswordHash
	}

	// Verify runs even for unknown emails so both rejections cost the same.
	ok, err := s.hasher.Verify(*req.Password, digest)
	if err != nil && acc != nil {
		return nil, oops.Code(CodeSigninFailed).
			With("operation", "verify password").
			With("account_id", acc.ID.String()).
			Wrap(err)
	}
	if acc == nil || !ok {
		s.logger.InfoContext(ctx, "signin rejected", "known_account", acc != nil)
		return nil, invalidCredentials()
	}

	session, err := s.issue(acc)
	if err != nil {
		return nil, oops.Code(CodeSigninFailed).With("operation", "issue token").Wrap(err)
	}

	s.logger.InfoContext(ctx, "signin succeeded", "account_id", session.AccountID)
	return session, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", "error", err)
		return nil, err
	}
	return claims, nil
}

func (s *Service) validate(kind validation.Kind, payload validation.Payload) error {
	result, err := s.validator.Validate(kind, payload)
	if err != nil {
		return oops.Code("AUTH_VALIDATOR_MISCONFIGURED").With("kind", kind.String()).Wrap(err)
	}
	if !result.OK() {
		return oops.Code(CodeValidationFailed).
			With("kind", kind.String()).
			With("field", result.Field).
			Public(result.Message).
			Errorf("%s payload rejected: %s", kind, result.Message)
	}
	return nil
}

func (s *Service) issue(acc *account.Account) (*Session, error) {
	claims := Claims{
		AccountID: acc.ID.String(),
		Username:  acc.Username,
		Email:     acc.Email,
	}
	token, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:      token,
		AccountID:  claims.AccountID,
		Username:   acc.Username,
		Email:      acc.Email,
		Preference: acc.Preference,
	}, nil
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Public(MsgInvalidCredentials).Wrap(ErrInvalidCredentials)
}
