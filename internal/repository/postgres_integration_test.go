//go:build integration
// +build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 优先使用 TEST_POSTGRES_DSN，未配置时启动临时容器。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		dsn = startPostgresContainer(t)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}
	_ = db.Migrator().DropTable(models.AllModels()...)
	if err := models.MigrateOn(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(models.AllModels()...)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func startPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "marketplace",
				"POSTGRES_PASSWORD": "marketplace",
				"POSTGRES_DB":       "marketplace",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skip postgres integration test: container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host failed: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port failed: %v", err)
	}
	return fmt.Sprintf("host=%s port=%s user=marketplace password=marketplace dbname=marketplace sslmode=disable", host, port.Port())
}

func TestPostgresConcurrentReserveHonoursCap(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewPromoCodeRepository(db)
	promo := createPromo(t, repo, "PGRACE", intPtr(1))
	now := time.Now().UTC()

	const workers = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ReserveUsage(promo.ID, now)
			if err != nil {
				t.Errorf("reserve failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if granted != 1 {
		t.Fatalf("expected exactly one reservation, got %d", granted)
	}

	if ok, err := repo.CommitUsage(promo.ID); err != nil || !ok {
		t.Fatalf("commit failed ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.CurrentUsage != 1 || got.ReservedUsage != 0 {
		t.Fatalf("unexpected counters usage=%d reserved=%d", got.CurrentUsage, got.ReservedUsage)
	}
}

func TestPostgresTakeoffSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewTakeoffRepository(db)
	createTakeoff(t, repo, "Warehouse Slab", "industrial", "75", true)

	rows, total, err := repo.List(TakeoffListFilter{Search: "warehouse", OnlyActive: true})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d", total)
	}
}

func TestPostgresOrderJSONColumns(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)
	order := createOrder(t, repo, "PGJSON", "pg@example.com", time.Now().UTC())

	got, err := repo.GetByOrderNo(order.OrderNo)
	if err != nil || got == nil {
		t.Fatalf("get by order no failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("json items mismatch: %+v", got.Items)
	}
}
