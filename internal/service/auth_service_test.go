package service

import (
	"errors"
	"testing"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/repository"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "admin-test-secret", ExpireHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
	}
	return NewAuthService(cfg, repository.NewAdminRepository(openServiceTestDB(t)))
}

func TestAuthServiceCreateAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	admin, err := svc.CreateAdmin(CreateAdminInput{Username: "  ops_lead ", Password: "Passw0rd!", Email: "ops@example.com"})
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if admin.Username != "ops_lead" {
		t.Fatalf("username not trimmed: %q", admin.Username)
	}
	if _, err := svc.CreateAdmin(CreateAdminInput{Username: "ops_lead", Password: "Passw0rd!"}); !errors.Is(err, ErrAdminUsernameExists) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
	if _, err := svc.CreateAdmin(CreateAdminInput{Username: "a b", Password: "Passw0rd!"}); !errors.Is(err, ErrAdminUsernameInvalid) {
		t.Fatalf("expected invalid username error, got %v", err)
	}
	if _, err := svc.CreateAdmin(CreateAdminInput{Username: "weakling", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}

	if _, _, _, err := svc.Login("ops_lead", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "Passw0rd!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown admin, got %v", err)
	}
	logged, token, _, err := svc.Login("ops_lead", "Passw0rd!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.LastLoginAt == nil {
		t.Fatalf("expected last login to be set")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.TokenVersion != 0 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthServiceChangePasswordBumpsTokenVersion(t *testing.T) {
	svc := newTestAuthService(t)
	admin, err := svc.CreateAdmin(CreateAdminInput{Username: "finance", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "nope", "N3wPassword"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd!", "N3wPassword"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if err := svc.ChangePassword(admin.ID+99, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, token, _, err := svc.Login("finance", "N3wPassword")
	if err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.TokenVersion != 1 {
		t.Fatalf("expected token version 1, got %d", claims.TokenVersion)
	}
}

func TestParseJWTRejectsForeignSecret(t *testing.T) {
	svc := newTestAuthService(t)
	admin, err := svc.CreateAdmin(CreateAdminInput{Username: "auditor", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	token, _, err := svc.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	other := &AuthService{cfg: &config.Config{JWT: config.JWTConfig{SecretKey: "someone-else"}}}
	if _, err := other.ParseJWT(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token invalid, got %v", err)
	}
}
