package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/protakeoff/marketplace/internal/app"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"

	"github.com/gin-gonic/gin"
)

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()
	fmt.Printf("\033[36;1mProTakeoff Marketplace API\033[0m  \033[2mmode=%s\033[0m\n", *mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	release := cfg.Server.Mode == "release"

	for _, problem := range auditSecrets(cfg) {
		if release {
			stdLog.Fatalf("%s，请在生产环境中配置", problem)
		}
		stdLog.Printf("警告: %s", problem)
	}
	if release && strings.TrimSpace(cfg.Stripe.SecretKey) == "" {
		stdLog.Printf("警告: 未配置 stripe.secret_key，结算将全部返回支付失败")
	}

	if err := models.Setup(cfg.Database, !release); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if _, err := models.EnsureBootstrapAdmin(models.DB, cfg.Admin, !release); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// auditSecrets 返回过弱的签名密钥描述
func auditSecrets(cfg *config.Config) []string {
	var problems []string
	for name, secret := range map[string]string{"jwt.secret": cfg.JWT.SecretKey, "user_jwt.secret": cfg.UserJWT.SecretKey} {
		if isWeakSecret(secret) {
			problems = append(problems, name+" 过弱或仍为默认值")
		}
	}
	return problems
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
