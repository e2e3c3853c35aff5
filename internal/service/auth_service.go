package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/observability/metrics"
	"github.com/yourorg/qaboard/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps the bcrypt cost identical for unknown emails and
// wrong passwords so response timing does not leak which one it was.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService verifies credentials and issues session tokens
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{userRepo: userRepo, tokens: tokens, logger: logger}
}

// RegisterResult represents registration response
type RegisterResult struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginResult represents login response
type LoginResult struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a new user account and issues a first token
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*RegisterResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.NewValidationError("email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, domain.NewValidationError("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to register user", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         "user",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to issue token", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &RegisterResult{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}, nil
}

// Login authenticates a user and returns a session token. Unknown email
// and wrong password produce the same INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			metrics.ObserveLogin("failure")
			return nil, domain.NewInvalidCredentialsError()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, domain.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, domain.WrapError(domain.CodeStorageUnavailable, "failed to issue token", err)
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	metrics.ObserveLogin("success")

	return &LoginResult{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
	}, nil
}

// VerifyToken verifies a bearer token and returns its claims
func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	return s.tokens.Verify(tokenString)
}
