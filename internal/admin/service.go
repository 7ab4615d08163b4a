// Copyright (c) 2026 Vitrine. All rights reserved.

// Package admin implements the single-operator authentication flow.
//
// Vitrine has no user accounts. One shared admin password, configured at
// deploy time, exchanges for a short-lived bearer token that unlocks the
// moderation endpoints.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitrineapp/vitrine/internal/platform/apperr"
	"github.com/vitrineapp/vitrine/internal/platform/constants"
	"github.com/vitrineapp/vitrine/internal/platform/sec"
)

// Service verifies the admin password and mints session tokens.
type Service struct {
	passwordHash string
	tokens       *sec.TokenService
	logger       *slog.Logger
}

// NewService creates the admin service. The plain-text password from the
// environment is hashed immediately so it never sits in memory longer than
// startup.
func NewService(password string, tokens *sec.TokenService, logger *slog.Logger) (*Service, error) {
	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("admin: hashing configured password: %w", err)
	}
	return &Service{
		passwordHash: hash,
		tokens:       tokens,
		logger:       logger,
	}, nil
}

// Session is a freshly minted admin token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the admin password for a bearer token. Wrong passwords
// get a generic 401 with no hint about what failed.
func (s *Service) Login(ctx context.Context, password string) (*Session, error) {
	if !sec.CheckPasswordHash(password, s.passwordHash) {
		s.logger.WarnContext(ctx, "admin login rejected")
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.GenerateAdminToken(constants.AdminTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.InfoContext(ctx, "admin login succeeded")
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(constants.AdminTokenTTL),
	}, nil
}
