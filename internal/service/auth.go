package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService checks credentials against the recipe store and issues session tokens
type AuthService struct {
	backend   BackendStore
	jwtSecret string
	ttl       time.Duration
	log       logrus.FieldLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(backend BackendStore, jwtSecret string, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		backend:   backend,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		log:       log.WithField("component", "auth"),
	}
}

// Login verifies credentials with the store and returns a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		var serverErr *types.ServerError
		if errors.As(err, &serverErr) && serverErr.Status < http.StatusInternalServerError {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.UserID, "role": user.Role}).Info("user logged in")
	return &types.LoginResponse{Token: token, User: *user}, nil
}

// Register creates an account. Only admins may create admin accounts.
func (s *AuthService) Register(ctx context.Context, caller types.Caller, req *types.RegisterRequest) (int, error) {
	switch req.Role {
	case "":
		req.Role = types.RoleUser
	case types.RoleUser:
	case types.RoleAdmin:
		if !caller.IsAdmin() {
			return 0, &types.ForbiddenError{Reason: "only admins can create admin accounts"}
		}
	default:
		return 0, &types.ValidationError{Fields: []string{"role"}}
	}

	id, err := s.backend.Register(ctx, *req)
	if err != nil {
		return 0, fmt.Errorf("failed to register: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "role": req.Role}).Info("user registered")
	return id, nil
}

// GenerateToken signs an HS256 session token for user
func (s *AuthService) GenerateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(user.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: user.UserID,
		Name:   user.Name,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
