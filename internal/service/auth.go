package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/config"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

// bcryptCost matches the work factor the original deployment used.
const bcryptCost = 8

// TokenKind selects between the two token classes, each signed with its
// own secret.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// AuthService handles credentials, tokens and account management.
type AuthService struct {
	users    repository.UserRepository
	cfg      config.JWT
	validate *validator.Validate
}

// NewAuthService creates a new authentication service
func NewAuthService(users repository.UserRepository, cfg config.JWT) *AuthService {
	return &AuthService{
		users:    users,
		cfg:      cfg,
		validate: newValidator(),
	}
}

// claims binds a token to its subject and kind.
type claims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// HashPassword hashes a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *AuthService) secret(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case TokenAccess:
		return []byte(s.cfg.AccessSecret), time.Duration(s.cfg.AccessExpiresIn) * time.Hour, nil
	case TokenRefresh:
		return []byte(s.cfg.RefreshSecret), time.Duration(s.cfg.RefreshExpiresIn) * time.Hour, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}

// IssueToken signs a token of the given kind for the principal.
func (s *AuthService) IssueToken(userID uuid.UUID, kind TokenKind) (string, error) {
	secret, ttl, err := s.secret(kind)
	if err != nil {
		return "", err
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("signing secret for %s tokens is not configured", kind)
	}

	now := time.Now()
	c := &claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken checks a token of the given kind and returns its subject.
// Expired and malformed tokens yield distinct authentication errors; a
// missing token is the caller's precondition to check.
func (s *AuthService) VerifyToken(tokenString string, kind TokenKind) (uuid.UUID, error) {
	secret, _, err := s.secret(kind)
	if err != nil {
		return uuid.Nil, err
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperr.New(apperr.KindAuthentication, "token expired")
		}
		return uuid.Nil, apperr.Wrap(apperr.KindAuthentication, "malformed token", err)
	}
	if !token.Valid || c.Kind != kind {
		return uuid.Nil, apperr.New(apperr.KindAuthentication, "malformed token")
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindAuthentication, "malformed token", err)
	}

	return userID, nil
}

func (s *AuthService) tokenPair(userID uuid.UUID) (*models.TokenPair, error) {
	access, err := s.IssueToken(userID, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueToken(userID, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Register creates a new account with the default role and issues a
// token pair.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.TokenPair, error) {
	if err := checkStruct(s.validate, req); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, apperr.New(apperr.KindConflict, "email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperr.Wrap(apperr.KindDependency, "failed to check existing account", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         models.RoleUser,
	})
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindDependency, "failed to create account", err)
	}

	pair, err := s.tokenPair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Login authenticates by email and password. The same error is returned
// for an unknown address and a wrong password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.TokenPair, error) {
	if err := checkStruct(s.validate, req); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperr.New(apperr.KindAuthentication, "invalid credentials")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindDependency, "failed to look up account", err)
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		return nil, nil, apperr.New(apperr.KindAuthentication, "invalid credentials")
	}

	pair, err := s.tokenPair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	userID, err := s.VerifyToken(refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindAuthentication, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to look up account", err)
	}

	return s.tokenPair(user.ID)
}

// GetUser resolves a principal by id, for the auth middleware.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindAuthentication, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to look up account", err)
	}
	return user, nil
}

// profileAllowList restricts what the self-service profile patch may
// touch. Role is deliberately absent.
var profileAllowList = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"phone":    true,
}

// UpdateProfile applies an allow-listed patch to the caller's own
// account. Any foreign key rejects the whole patch.
func (s *AuthService) UpdateProfile(ctx context.Context, user *models.User, patch map[string]json.RawMessage) (*models.User, error) {
	var invalid []string
	for key := range patch {
		if !profileAllowList[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return nil, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(invalid...)
	}
	if len(patch) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty update")
	}

	updated := *user
	var details []string

	if raw, ok := patch["name"]; ok {
		if err := json.Unmarshal(raw, &updated.Name); err != nil || updated.Name == "" {
			details = append(details, "name must be a non-empty string")
		}
	}
	if raw, ok := patch["email"]; ok {
		if err := json.Unmarshal(raw, &updated.Email); err != nil || updated.Email == "" {
			details = append(details, "email must be a non-empty string")
		}
	}
	if raw, ok := patch["phone"]; ok {
		var phone *string
		if err := json.Unmarshal(raw, &phone); err != nil {
			details = append(details, "phone must be a string")
		} else {
			updated.Phone = phone
		}
	}

	var newPassword string
	if raw, ok := patch["password"]; ok {
		if err := json.Unmarshal(raw, &newPassword); err != nil || len(newPassword) < 6 {
			details = append(details, "password must be at least 6 characters")
		}
	}

	if len(details) > 0 {
		return nil, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(details...)
	}

	result, err := s.users.Update(ctx, updated)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to update profile", err)
	}

	if newPassword != "" {
		hash, err := HashPassword(newPassword)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, apperr.Wrap(apperr.KindDependency, "failed to update password", err)
		}
	}

	return result, nil
}
