package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/provider"

	"github.com/gin-gonic/gin"
)

const healthProbeTimeout = 2 * time.Second

var errDatabaseUnavailable = errors.New("database not configured")

// healthHandler 数据库不可达返回 503；Redis 只做降级提示，不影响状态码
func healthHandler(c *provider.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthProbeTimeout)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := pingDatabase(probeCtx, c); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if client := cache.Client(); client != nil {
			checks["redis"] = "ok"
			if err := client.Ping(probeCtx).Err(); err != nil {
				checks["redis"] = err.Error()
			}
		}

		body := gin.H{"status": "ok", "checks": checks}
		if status != http.StatusOK {
			body["status"] = "unavailable"
		}
		ctx.JSON(status, body)
	}
}

func pingDatabase(ctx context.Context, c *provider.Container) error {
	if c == nil || c.DB == nil {
		return errDatabaseUnavailable
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
