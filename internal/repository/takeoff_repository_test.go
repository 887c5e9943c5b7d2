package repository

import (
	"testing"

	"github.com/protakeoff/marketplace/internal/models"
)

func createTakeoff(t *testing.T, repo *GormTakeoffRepository, title, category, price string, active bool) *models.Takeoff {
	t.Helper()
	takeoff := &models.Takeoff{
		Title:    title,
		Category: category,
		Price:    models.MustMoney(price),
		Files:    models.FileManifest{{Filename: "a.pdf", OriginalName: "A.pdf", URL: "/uploads/a.pdf", Size: 10}},
		IsActive: true,
	}
	if err := repo.Create(takeoff); err != nil {
		t.Fatalf("create takeoff failed: %v", err)
	}
	if !active {
		takeoff.IsActive = false
		if err := repo.Update(takeoff); err != nil {
			t.Fatalf("deactivate takeoff failed: %v", err)
		}
	}
	return takeoff
}

func TestTakeoffListFilters(t *testing.T) {
	repo := NewTakeoffRepository(openRepositoryTestDB(t))
	createTakeoff(t, repo, "Residential deck", "residential", "40", true)
	createTakeoff(t, repo, "Office fit-out", "commercial", "120", true)
	createTakeoff(t, repo, "Hidden deck", "residential", "15", false)

	items, total, err := repo.List(TakeoffListFilter{OnlyActive: true, Search: "deck"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].Title != "Residential deck" {
		t.Fatalf("unexpected search result total=%d", total)
	}

	items, _, err = repo.List(TakeoffListFilter{OnlyActive: true, OrderBy: "price_desc"})
	if err != nil || len(items) != 2 || items[0].Title != "Office fit-out" {
		t.Fatalf("price ordering mismatch err=%v", err)
	}

	categories, err := repo.ListCategories()
	if err != nil {
		t.Fatalf("list categories failed: %v", err)
	}
	if len(categories) != 2 || categories[0] != "commercial" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}

func TestIncrementPurchaseCountAndUpdateKeepsIt(t *testing.T) {
	repo := NewTakeoffRepository(openRepositoryTestDB(t))
	takeoff := createTakeoff(t, repo, "Roof", "residential", "30", true)

	if err := repo.IncrementPurchaseCount(takeoff.ID, 1); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := repo.IncrementPurchaseCount(takeoff.ID, 0); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	takeoff.Title = "Roof v2"
	if err := repo.Update(takeoff); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, err := repo.GetByID(takeoff.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.PurchaseCount != 2 {
		t.Fatalf("expected purchase count 2, got %d", got.PurchaseCount)
	}
	if got.Title != "Roof v2" || len(got.Files) != 1 {
		t.Fatalf("update lost fields: %+v", got)
	}
}

func TestGetActiveByIDHidesInactive(t *testing.T) {
	repo := NewTakeoffRepository(openRepositoryTestDB(t))
	hidden := createTakeoff(t, repo, "Hidden", "", "10", false)

	got, err := repo.GetActiveByID(hidden.ID)
	if err != nil || got != nil {
		t.Fatalf("inactive takeoff should be hidden got=%v err=%v", got, err)
	}
	got, err = repo.GetByID(hidden.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID should include inactive err=%v", err)
	}
}
