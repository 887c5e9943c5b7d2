package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/protakeoff/marketplace/internal/logger"

	"github.com/spf13/viper"
)

// ConfigFileEnv 指定配置文件路径，未设置时按 searchPaths 查找 config.yml
const ConfigFileEnv = "PT_CONFIG"

var searchPaths = []string{".", "../", "./etc"}

var defaults = map[string]interface{}{
	"server.host":                              "0.0.0.0",
	"server.port":                              "8080",
	"server.mode":                              "debug",
	"server.read_header_timeout_seconds":       10,
	"server.read_timeout_seconds":              60,
	"server.write_timeout_seconds":             60,
	"server.shutdown_timeout_seconds":          15,
	"log.level":                                "",
	"log.stdout":                               false,
	"log.dir":                                  "",
	"log.filename":                             "app.log",
	"log.max_size_mb":                          100,
	"log.max_backups":                          7,
	"log.max_age_days":                         30,
	"log.compress":                             true,
	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/marketplace.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,
	"jwt.secret":                               "change-me-in-production",
	"jwt.expire_hours":                         24,
	"user_jwt.secret":                          "user-change-me-in-production",
	"user_jwt.expire_hours":                    24,
	"user_jwt.remember_me_expire_hours":        168,
	"admin.username":                           "admin",
	"admin.password":                           "",
	"redis.enabled":                            true,
	"redis.host":                               "127.0.0.1",
	"redis.port":                               6379,
	"redis.password":                           "",
	"redis.db":                                 0,
	"redis.prefix":                             "pt",
	"queue.enabled":                            true,
	"queue.host":                               "127.0.0.1",
	"queue.port":                               6379,
	"queue.password":                           "",
	"queue.db":                                 1,
	"queue.concurrency":                        10,
	"queue.reconciliation_audit_cron":          "@every 10m",
	"queue.queues":                             map[string]int{"default": 10, "critical": 5},
	"upload.dir":                               "uploads",
	"upload.public_prefix":                     "/uploads",
	"upload.max_size":                          10 << 20,
	"upload.allowed_types":                     []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	"upload.allowed_extensions":                []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	"upload.takeoff_max_size":                  100 << 20,
	"upload.takeoff_extensions":                []string{".pdf", ".dwg", ".dxf", ".xlsx", ".xls", ".csv", ".zip"},
	"cors.allowed_origins":                     []string{"*"},
	"cors.allowed_methods":                     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers": []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
		"Cache-Control", "X-Requested-With", "Idempotency-Key",
	},
	"cors.allow_credentials":                   true,
	"cors.max_age":                             600,
	"security.login_rate_limit.window_seconds": 300,
	"security.login_rate_limit.max_attempts":   5,
	"security.login_rate_limit.block_seconds":  900,
	"security.password_policy.min_length":      8,
	"security.password_policy.require_upper":   false,
	"security.password_policy.require_lower":   true,
	"security.password_policy.require_number":  true,
	"security.password_policy.require_special": false,
	"email.enabled":                            false,
	"email.host":                               "",
	"email.port":                               587,
	"email.username":                           "",
	"email.password":                           "",
	"email.from":                               "",
	"email.from_name":                          "ProTakeoff",
	"email.use_tls":                            true,
	"email.use_ssl":                            false,
	"email.site_url":                           "http://localhost:3000",
	"order.currency":                           "usd",
	"order.require_promo_validity":             false,
	"order.idempotency_ttl_seconds":            86400,
	"order.max_line_quantity":                  100,
	"stripe.secret_key":                        "",
	"stripe.publishable_key":                   "",
	"stripe.api_base_url":                      "https://api.stripe.com",
	"stripe.timeout_seconds":                   15,
	"captcha.provider":                         "none",
	"captcha.scenes.register":                  false,
	"captcha.scenes.contact":                   true,
	"captcha.image.length":                     5,
	"captcha.image.width":                      240,
	"captcha.image.height":                     80,
	"captcha.image.noise_count":                2,
	"captcha.image.show_line":                  2,
	"captcha.image.expire_seconds":             300,
	"captcha.image.max_store":                  10240,
	"contact.notify_email":                     "",
	"metrics.enabled":                          true,
	"metrics.path":                             "/metrics",
}

// Load 读取配置，解析失败直接 panic；环境变量优先，例如 ORDER_REQUIRE_PROMO_VALIDITY=true
func Load() *Config {
	cfg, err := LoadFrom(os.Getenv(ConfigFileEnv))
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return cfg
}

// LoadFrom path 为空时按默认路径查找；配置文件缺失不算错误，回落到环境变量与默认值
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchPaths {
			v.AddConfigPath(dir)
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	case errors.As(err, &notFound):
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	case path != "":
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
