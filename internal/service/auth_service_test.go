package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/qaboard/internal/domain"
	"github.com/yourorg/qaboard/internal/security/auth"
)

func newTestAuthService() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	tokens := auth.NewTokenManager("test-secret", "qaboard-test", time.Hour)
	return NewAuthService(repo, tokens, nil), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	// Register
	r, err := s.Register(ctx, "alice@example.com", "alice", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.UserID == "" || r.Token == "" {
		t.Fatalf("expected user id and token")
	}

	// Duplicate email
	if _, err := s.Register(ctx, "alice@example.com", "alice2", "Password123"); !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}

	// Duplicate username
	if _, err := s.Register(ctx, "other@example.com", "alice", "Password123"); !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("expected validation error for duplicate username, got %v", err)
	}

	// Login ok
	lr, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}
	if lr.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %s", lr.TokenType)
	}

	// The issued token must verify
	claims, err := s.VerifyToken(lr.Token)
	if err != nil {
		t.Fatalf("token verification failed: %v", err)
	}
	if claims.UserID != r.UserID {
		t.Fatalf("expected claims for %s, got %s", r.UserID, claims.UserID)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	cases := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"missing email", "", "bob", "Password123"},
		{"bad email", "not-an-email", "bob", "Password123"},
		{"missing username", "bob@example.com", "", "Password123"},
		{"short password", "bob@example.com", "bob", "short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Register(ctx, tc.email, tc.username, tc.password); !domain.IsCode(err, domain.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	if _, err := s.Register(ctx, "Carol@Example.com", "carol", "Password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := s.Login(ctx, "carol@example.com", "Password123"); err != nil {
		t.Fatalf("login with lowercased email failed: %v", err)
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestAuthService()

	if _, err := s.Register(ctx, "dave@example.com", "dave", "Password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Unknown email and wrong password must return the same code so a
	// caller cannot probe which emails are registered.
	_, unknownErr := s.Login(ctx, "nobody@example.com", "Password123")
	if !domain.IsCode(unknownErr, domain.CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS for unknown email, got %v", unknownErr)
	}

	_, wrongErr := s.Login(ctx, "dave@example.com", "WrongPassword")
	if !domain.IsCode(wrongErr, domain.CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS for wrong password, got %v", wrongErr)
	}

	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("expected identical error messages, got %q vs %q", unknownErr, wrongErr)
	}
}
