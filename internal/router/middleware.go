package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/authz"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = response.RequestIDKey
const requestIDHeader = "X-Request-ID"
const adminIsSuperContextKey = "admin_is_super"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Authorization",
			"Accept-Language",
			"Idempotency-Key",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")
	exposeHeader := strings.Join([]string{requestIDHeader, "Retry-After"}, ", ")

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowedOrigin := resolveAllowedOrigin(c.GetHeader("Origin"), allowedOrigins, cfg.AllowCredentials); allowedOrigin != "" {
			header.Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", headersHeader)
		header.Set("Access-Control-Allow-Methods", methodsHeader)
		header.Set("Access-Control-Expose-Headers", exposeHeader)
		if cfg.MaxAge > 0 {
			header.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// resolveAllowedOrigin 携带凭证时不能回写 *，改为回显请求来源
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed != "*" {
			continue
		}
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// 客户端传入的请求 ID 超长或含不可见字符时重新生成
const maxRequestIDLength = 64

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// LoggerMiddleware 结构化访问日志，5xx 记 error，4xx 记 warn
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			log.Errorw("http_request", "errors", c.Errors.String())
		case status >= http.StatusBadRequest:
			log.Warnw("http_request")
		default:
			log.Infow("http_request")
		}
	}
}

func getRequestID(c *gin.Context) string {
	return response.RequestID(c)
}

// abortUnauthorized 统一 401 拒绝
func abortUnauthorized(c *gin.Context, key string) {
	response.Abort(c, http.StatusUnauthorized, i18n.T(i18n.ResolveLocale(c), key))
}

func abortForbidden(c *gin.Context) {
	response.Abort(c, http.StatusForbidden, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
}

// bearerFromRequest 取出 Bearer Token；失败时已写入 401
func bearerFromRequest(c *gin.Context, secretKey string, ready bool) (string, bool) {
	if secretKey == "" {
		abortUnauthorized(c, "error.jwt_secret_missing")
		return "", false
	}
	if !ready {
		abortUnauthorized(c, "error.token_invalid")
		return "", false
	}
	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	switch {
	case scheme == "" && !found:
		abortUnauthorized(c, "error.auth_header_missing")
		return "", false
	case scheme != "Bearer" || strings.TrimSpace(token) == "":
		abortUnauthorized(c, "error.auth_header_invalid")
		return "", false
	}
	return strings.TrimSpace(token), true
}

// JWTAuthMiddleware 员工 JWT 鉴权，token_version 与缓存快照不一致视为已吊销
func JWTAuthMiddleware(secretKey string, authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerFromRequest(c, secretKey, authService != nil)
		if !ok {
			return
		}
		claims, err := authService.ParseJWT(raw)
		if err != nil || claims.AdminID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		state, err := authService.ResolveAdminAuthState(c.Request.Context(), claims.AdminID)
		switch {
		case err != nil || state == nil:
			abortUnauthorized(c, "error.token_invalid")
			return
		case claims.TokenVersion != state.TokenVersion:
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("username", state.Username)
		c.Set(adminIsSuperContextKey, state.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 超级管理员直接放行，其余按 casbin 策略校验路由模板与方法
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortForbidden(c)
			return
		}
		id := c.GetUint("admin_id")
		if id == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := strings.TrimSpace(c.FullPath())
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(id, resource, c.Request.Method)
		if err != nil || !allowed {
			fields := []interface{}{
				"admin_id", id,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			}
			if err != nil {
				logger.Errorw("admin_rbac_enforce_failed", append(fields, "error", err)...)
			} else {
				logger.Warnw("admin_rbac_permission_denied", fields...)
			}
			abortForbidden(c)
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 用户 JWT 鉴权，禁用账号即时失效
func UserJWTAuthMiddleware(secretKey string, userAuthService *service.UserAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerFromRequest(c, secretKey, userAuthService != nil)
		if !ok {
			return
		}
		claims, err := userAuthService.ParseUserJWT(raw)
		if err != nil || claims.UserID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		state, err := userAuthService.ResolveUserAuthState(c.Request.Context(), claims.UserID)
		switch {
		case err != nil || state == nil:
			abortUnauthorized(c, "error.token_invalid")
			return
		case !strings.EqualFold(strings.TrimSpace(state.Status), constants.UserStatusActive):
			abortUnauthorized(c, "error.user_disabled")
			return
		case claims.TokenVersion != state.TokenVersion:
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}
