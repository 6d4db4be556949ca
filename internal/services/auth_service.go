package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"innkeeper/internal/caching"
	"innkeeper/internal/common"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// DefaultRegistrationRole is assigned to every newly registered principal;
// it is created on demand when the tenant does not have it yet.
const DefaultRegistrationRole = "guest_user"

// AuthService handles registration, login and token lifecycle. Access tokens
// are HS256 JWTs carrying the principal and tenant; refresh tokens are opaque
// secrets whose SHA-256 hash lives in the cache layer until expiry or revoke.
type AuthService interface {
	Register(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*models.User, *models.TokenResponse, error)
	Login(ctx context.Context, tenantID uuid.UUID, email, password string) (*models.User, *models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the JWT claims this backend issues.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	rbacSvc    RBACService
	cacheSvc   caching.CacheService
	logger     *zap.Logger
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, rbacSvc RBACService, cacheSvc caching.CacheService, logger *zap.Logger, jwtSecret string, accessTTL, refreshTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		rbacSvc:    rbacSvc,
		cacheSvc:   cacheSvc,
		logger:     logger,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, tenantID uuid.UUID, email, password, name string) (*models.User, *models.TokenResponse, error) {
	if tenantID == uuid.Nil {
		// Central registration is deliberately unsupported: every principal
		// is created inside exactly one tenant and never reassigned.
		return nil, nil, errors.New("registration requires a tenant context")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, nil, errors.New("email and a password of at least 8 characters are required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, tenantID, email); err == nil {
		return nil, nil, errors.New("email already registered")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	// New principals start with the tenant's guest role, creating it first
	// when the tenant has never seen one.
	role, err := s.rbacSvc.DefineRole(ctx, tenantID, DefaultRegistrationRole, nil)
	if err != nil {
		s.logger.Error("default role definition failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
	} else if err := s.rbacSvc.AssignRole(ctx, tenantID, user.ID, role.ID); err != nil {
		s.logger.Error("default role assignment failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}

	tokens, err := s.issueTokens(ctx, user.ID, tenantID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (*models.User, *models.TokenResponse, error) {
	if tenantID == uuid.Nil {
		return nil, nil, ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Same outcome as a bad password: nothing confirms whether the
			// account exists here or in another tenant.
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !verifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID, tenantID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	hash := hashToken(refreshToken)
	data, err := s.cacheSvc.GetString(ctx, refreshTokenKey(hash))
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, ErrInvalidCredentials
	}

	parts := strings.Split(data, "|")
	if len(parts) != 2 {
		return nil, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	tenantID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// One refresh, one rotation: the old token dies before the new pair is
	// issued.
	if err := s.cacheSvc.Delete(ctx, refreshTokenKey(hash)); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, userID, tenantID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKey(hashToken(refreshToken)))
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (s *authService) issueTokens(ctx context.Context, userID, tenantID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "innkeeper-auth",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	payload := fmt.Sprintf("%s|%s", userID.String(), tenantID.String())
	if err := s.cacheSvc.SetString(ctx, refreshTokenKey(hashToken(refreshToken)), payload, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       userID.String(),
		TenantID:     tenantID.String(),
		IssuedAt:     now,
	}, nil
}

func refreshTokenKey(hash string) string {
	return "refresh_token:" + hash
}

func generateSecureToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// hashPassword generates an argon2id hash with a random salt, encoded as
// hex(salt)$hex(hash).
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against a stored argon2id hash.
func verifyPassword(password, encoded string) bool {
	parts := strings.SplitN(encoded, "$", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
