package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:repo_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateOn(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func intPtr(v int) *int {
	return &v
}

func createPromo(t *testing.T, repo *GormPromoCodeRepository, code string, maxUsage *int) *models.PromoCode {
	t.Helper()
	now := time.Now().UTC()
	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  "percentage",
		DiscountValue: models.MustMoney("10"),
		MaxUsage:      maxUsage,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		IsActive:      true,
	}
	if err := repo.Create(promo); err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}
