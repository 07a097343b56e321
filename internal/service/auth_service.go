package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/persistence"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// TokenRevoker deny-lists refresh token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevokerFromRedis returns a Redis-backed revoker, or nil when Redis is off.
func RevokerFromRedis(r *persistence.Redis) TokenRevoker {
	if r == nil || r.Client == nil {
		return nil
	}
	return persistence.NewTokenRevoker(r.Client)
}

// AuthService coordinates login, refresh and logout flows.
type AuthService struct {
	users         repository.UserRepository
	tokenMgr      *auth.TokenManager
	revoker       TokenRevoker
	revokeRotated bool
	logger        *zap.Logger
	now           func() time.Time
}

// AuthDependencies encapsulates requirements for auth service. Revoker may be
// nil, in which case refresh tokens stay valid until they expire.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Revoker  TokenRevoker
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:         deps.UserRepo,
		tokenMgr:      tokens,
		revoker:       deps.Revoker,
		revokeRotated: cfg.RevokeRotatedRefresh,
		logger:        logger,
		now:           time.Now,
	}
}

// Login authenticates by email and password. Unknown email, inactive account
// and wrong password all produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}
	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	matches := auth.PasswordMatches(hash, password)
	if user == nil || !user.IsActive || !matches {
		return nil, apperrors.NewInvalidCredentials()
	}
	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new session and rotates the refresh
// token. Every failure is reported as INVALID_TOKEN.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if refreshToken == "" {
		return nil, apperrors.NewNoRefreshToken()
	}
	claims, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewInvalidToken()
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("refresh token revocation check failed", zap.Error(err))
			return nil, apperrors.NewInvalidToken()
		}
		if revoked {
			return nil, apperrors.NewInvalidToken()
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, apperrors.NewInvalidToken()
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.revokeRotated {
		s.revoke(ctx, claims)
	}
	return session, nil
}

// Logout revokes the presented refresh token when a revoker is configured.
// It never fails; an unusable token simply has nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		return
	}
	s.revoke(ctx, claims)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) {
	if s.revoker == nil || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("failed to revoke refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*domain.Session, error) {
	access, accessExp, err := s.tokenMgr.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, refreshExp, err := s.tokenMgr.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		Profile:          *profile,
	}, nil
}
