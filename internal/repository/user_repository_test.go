package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

func createUser(t *testing.T, repo *GormUserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hash", Status: "active"}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestUserRepositoryLookupNormalizesEmail(t *testing.T) {
	repo := NewUserRepository(openRepositoryTestDB(t))
	created := createUser(t, repo, "  Ada@Example.COM ")

	got, err := repo.GetByEmail("ada@example.com")
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("lookup by email failed: user=%v err=%v", got, err)
	}
	missing, err := repo.GetByID(created.ID + 100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing user, got %v err=%v", missing, err)
	}

	users, err := repo.ListByEmails([]string{"ADA@example.com", "ada@example.com", "", "nobody@example.com"})
	if err != nil {
		t.Fatalf("list by emails failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestUserRepositoryRevokeTokensBumpsVersion(t *testing.T) {
	repo := NewUserRepository(openRepositoryTestDB(t))
	user := createUser(t, repo, "bob@example.com")

	if err := repo.RevokeTokens(user.ID, map[string]interface{}{"password_hash": "next"}); err != nil {
		t.Fatalf("revoke tokens failed: %v", err)
	}
	if err := repo.RevokeTokens(user.ID, nil); err != nil {
		t.Fatalf("revoke tokens failed: %v", err)
	}
	reloaded, err := repo.GetByID(user.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+2 {
		t.Fatalf("expected token version %d, got %d", user.TokenVersion+2, reloaded.TokenVersion)
	}
	if reloaded.PasswordHash != "next" {
		t.Fatalf("password hash not updated: %s", reloaded.PasswordHash)
	}

	if err := repo.UpdateFields(user.ID+100, map[string]interface{}{"company": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}
}

func TestUserRepositoryRecordLoginAndList(t *testing.T) {
	repo := NewUserRepository(openRepositoryTestDB(t))
	first := createUser(t, repo, "first@example.com")
	createUser(t, repo, "second@example.com")

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.RecordLogin(first.ID, at); err != nil {
		t.Fatalf("record login failed: %v", err)
	}
	if err := repo.UpdateFields(first.ID, map[string]interface{}{"status": "disabled"}); err != nil {
		t.Fatalf("update fields failed: %v", err)
	}

	users, total, err := repo.List(UserListFilter{Status: "disabled", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].ID != first.ID {
		t.Fatalf("unexpected list result: total=%d users=%v", total, users)
	}
	if users[0].LastLoginAt == nil || !users[0].LastLoginAt.Equal(at) {
		t.Fatalf("last login not recorded: %v", users[0].LastLoginAt)
	}

	all, total, err := repo.List(UserListFilter{Page: 1, PageSize: 10})
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 users, got total=%d err=%v", total, err)
	}
	if all[0].ID < all[1].ID {
		t.Fatalf("expected newest first")
	}
}
