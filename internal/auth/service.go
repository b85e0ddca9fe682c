package auth

import (
	"context"
	"strings"
	"time"

	"github.com/kippu-app/kippu-backend/internal/users"
	pkgauth "github.com/kippu-app/kippu-backend/pkg/auth"
	"github.com/kippu-app/kippu-backend/pkg/auth/session"
	"github.com/kippu-app/kippu-backend/pkg/config"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/security"
)

type service struct {
	profiles users.Repository
	sessions SessionOpener
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the admin login service.
func NewService(profiles users.Repository, sessions SessionOpener, jwtCfg config.JWTConfig, logg *logger.Logger) Service {
	return &service{
		profiles: profiles,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		logg:     logg,
		now:      time.Now,
	}
}

// Login verifies admin credentials and opens a Redis-backed session keyed by
// the token's jti. Every rejection path returns the same UNAUTHORIZED error
// so responses do not reveal which check failed.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil || !profile.IsAdmin || profile.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, *profile.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:  profile.ID,
		IsAdmin: profile.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Open(ctx, accessID, profile.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open session")
	}

	if err := s.profiles.TouchLastLogin(ctx, profile.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, profile.ID.String()), "admin login")
	}
	return &LoginResult{AccessToken: token, Profile: profile}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}
