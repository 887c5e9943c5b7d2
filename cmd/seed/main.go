package main

import (
	"errors"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.Setup(cfg.Database, false); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}
	if _, err := models.EnsureBootstrapAdmin(models.DB, cfg.Admin, true); err != nil {
		stdLog.Printf("Failed to create bootstrap admin: %v", err)
	}

	for _, takeoff := range seedTakeoffs() {
		created, err := firstOrCreate(models.DB, &models.Takeoff{}, "title = ?", takeoff.Title, &takeoff)
		if err != nil {
			stdLog.Printf("Failed to create takeoff %s: %v", takeoff.Title, err)
			continue
		}
		if created {
			stdLog.Printf("Created takeoff: %s", takeoff.Title)
		} else {
			stdLog.Printf("Takeoff already exists: %s", takeoff.Title)
		}
	}

	for _, promo := range seedPromoCodes(time.Now().UTC()) {
		created, err := firstOrCreate(models.DB, &models.PromoCode{}, "code = ?", promo.Code, &promo)
		if err != nil {
			stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
			continue
		}
		if created {
			stdLog.Printf("Created promo code: %s", promo.Code)
		} else {
			stdLog.Printf("Promo code already exists: %s", promo.Code)
		}
	}

	stdLog.Printf("Seed completed")
}

// firstOrCreate 按条件查找，不存在时创建 record
func firstOrCreate(db *gorm.DB, probe interface{}, query string, arg interface{}, record interface{}) (bool, error) {
	err := db.Where(query, arg).First(probe).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(record).Error
}

func seedTakeoffs() []models.Takeoff {
	return []models.Takeoff{
		{
			Title:       "Two-Story Residential Home",
			Description: "Full quantity takeoff for a 2,400 sq ft two-story wood frame home.",
			Category:    "residential",
			Price:       models.MustMoney("149.00"),
			Files: models.FileManifest{
				{Filename: "residential-2story.xlsx", OriginalName: "Residential 2-Story Takeoff.xlsx", URL: "/uploads/takeoff/residential-2story.xlsx", Size: 184320},
				{Filename: "residential-2story.pdf", OriginalName: "Residential 2-Story Plans.pdf", URL: "/uploads/takeoff/residential-2story.pdf", Size: 5242880},
			},
			BlueprintURL: "/uploads/takeoff/residential-2story.pdf",
			IsActive:     true,
		},
		{
			Title:       "Retail Strip Center",
			Description: "Concrete, masonry and steel quantities for a six-unit retail strip.",
			Category:    "commercial",
			Price:       models.MustMoney("399.00"),
			Files: models.FileManifest{
				{Filename: "retail-strip.xlsx", OriginalName: "Retail Strip Takeoff.xlsx", URL: "/uploads/takeoff/retail-strip.xlsx", Size: 262144},
			},
			IsActive: true,
		},
		{
			Title:       "Light Industrial Warehouse",
			Description: "Tilt-up warehouse takeoff including slab, panels and roof framing.",
			Category:    "industrial",
			Price:       models.MustMoney("549.00"),
			Files: models.FileManifest{
				{Filename: "warehouse.xlsx", OriginalName: "Warehouse Takeoff.xlsx", URL: "/uploads/takeoff/warehouse.xlsx", Size: 311296},
			},
			IsActive: true,
		},
	}
}

func seedPromoCodes(now time.Time) []models.PromoCode {
	limited := 100
	maxDiscount := models.MustMoney("150.00")
	return []models.PromoCode{
		{
			Code:          "SAVE10",
			Description:   "10% off any order",
			DiscountType:  constants.PromoTypePercentage,
			DiscountValue: models.MustMoney("10"),
			ValidFrom:     now,
			ValidUntil:    now.AddDate(1, 0, 0),
			IsActive:      true,
		},
		{
			Code:               "FLAT50",
			Description:        "$50 off orders over $200",
			DiscountType:       constants.PromoTypeFixed,
			DiscountValue:      models.MustMoney("50"),
			MinimumOrderAmount: models.MustMoney("200"),
			MaxUsage:           &limited,
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 6, 0),
			IsActive:           true,
		},
		{
			Code:               "BIG20",
			Description:        "20% off orders over $500, capped at $150",
			DiscountType:       constants.PromoTypePercentage,
			DiscountValue:      models.MustMoney("20"),
			MaxDiscount:        &maxDiscount,
			MinimumOrderAmount: models.MustMoney("500"),
			ValidFrom:          now,
			ValidUntil:         now.AddDate(0, 3, 0),
			IsActive:           true,
		},
	}
}
