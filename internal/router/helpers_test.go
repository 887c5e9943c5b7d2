package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/provider"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type fakeGateway struct {
	status string
	calls  int
}

func (g *fakeGateway) Charge(_ context.Context, input service.PaymentChargeInput) (*service.PaymentChargeResult, error) {
	g.calls++
	return &service.PaymentChargeResult{
		Status:      g.status,
		ReferenceID: fmt.Sprintf("pi_test_%d_%d", g.calls, input.AmountMinor),
	}, nil
}

func openRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:router_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 2},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 2},
		Order:   config.OrderConfig{Currency: constants.CurrencyDefault},
		Captcha: config.CaptchaConfig{Provider: constants.CaptchaProviderNone},
		Upload:  config.UploadConfig{Dir: "./uploads", PublicPrefix: "/uploads"},
	}
}

// setupTestApp 组装完整路由，支付网关替换为假实现
func setupTestApp(t *testing.T, gateway service.PaymentGateway) (*gin.Engine, *provider.Container, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openRouterTestDB(t)
	cfg := testConfig()
	c := provider.NewContainerWithDB(cfg, db)
	c.PaymentGateway = gateway
	c.CheckoutService = service.NewCheckoutService(cfg.Order, c.TakeoffRepo, c.PromoCodeRepo, c.OrderRepo, c.ReconciliationRepo, gateway, nil, cache.NewIdempotencyStore(0))
	return SetupRouter(cfg, c), c, db
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func registerUser(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	_, resp := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      email,
		"password":   "Secret123!",
		"first_name": "Dana",
		"last_name":  "Builder",
	})
	if resp.StatusCode != 0 {
		t.Fatalf("register failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("register token missing: %v", err)
	}
	return data.Token
}

func createTakeoff(t *testing.T, db *gorm.DB, title, price string) *models.Takeoff {
	t.Helper()
	takeoff := &models.Takeoff{
		Title:    title,
		Category: "residential",
		Price:    models.MustMoney(price),
		Files:    models.FileManifest{{Filename: "plan.pdf", OriginalName: "plan.pdf", URL: "/uploads/takeoff/plan.pdf", Size: 10}},
		IsActive: true,
	}
	if err := db.Create(takeoff).Error; err != nil {
		t.Fatalf("create takeoff failed: %v", err)
	}
	return takeoff
}

func createPromo(t *testing.T, db *gorm.DB, code, discountType, value string, maxUsage *int) *models.PromoCode {
	t.Helper()
	now := time.Now().UTC()
	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: models.MustMoney(value),
		MaxUsage:      maxUsage,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(24 * time.Hour),
		IsActive:      true,
	}
	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}
