package router

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	adminhandlers "github.com/protakeoff/marketplace/internal/http/handlers/admin"
	publichandlers "github.com/protakeoff/marketplace/internal/http/handlers/public"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/metrics"
	"github.com/protakeoff/marketplace/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// routeDeps 各路由分组共享的依赖
type routeDeps struct {
	cfg         *config.Config
	container   *provider.Container
	public      *publichandlers.Handler
	admin       *adminhandlers.Handler
	redis       *redis.Client
	redisPrefix string
}

// SetupRouter 组装中间件与全部路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(log), CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware())
		r.GET(nonEmpty(cfg.Metrics.Path, "/metrics"), metrics.Handler())
	}
	r.Static(nonEmpty(cfg.Upload.PublicPrefix, "/uploads"), nonEmpty(cfg.Upload.Dir, "./uploads"))
	r.GET("/health", healthHandler(c))

	deps := routeDeps{
		cfg:         cfg,
		container:   c,
		public:      publichandlers.New(c),
		admin:       adminhandlers.New(c),
		redis:       cache.Client(),
		redisPrefix: nonEmpty(cfg.Redis.Prefix, constants.RedisPrefixDefault),
	}
	apiV1 := r.Group("/api/v1")
	deps.registerPublic(apiV1.Group("/public"))
	deps.registerAuth(apiV1.Group("/auth"))
	deps.registerUser(apiV1.Group(""))
	deps.registerAdmin(apiV1.Group("/admin"), r)
	return r
}

func (d routeDeps) registerPublic(g *gin.RouterGroup) {
	h := d.public
	g.GET("/config", h.GetConfig)
	g.GET("/takeoffs", h.GetTakeoffs)
	g.GET("/takeoffs/:id", h.GetTakeoff)
	g.GET("/categories", h.GetCategories)
	g.GET("/captcha/image", h.GetImageCaptcha)
	g.POST("/promo-codes/validate", h.ValidatePromoCode)
	g.POST("/contact", RateLimitMiddleware(d.redis, contactRule(d.redisPrefix), KeyByIP), h.SubmitContact)
}

func (d routeDeps) registerAuth(g *gin.RouterGroup) {
	login := loginRule(d.redisPrefix, "login", d.cfg.Security.LoginRateLimit)
	g.POST("/register", d.public.UserRegister)
	g.POST("/login", RateLimitMiddleware(d.redis, login, KeyByIPAndJSONField("email")), d.public.UserLogin)
}

// registerUser 登录用户接口
func (d routeDeps) registerUser(g *gin.RouterGroup) {
	h := d.public
	g.Use(UserJWTAuthMiddleware(d.cfg.UserJWT.SecretKey, d.container.UserAuthService))
	g.GET("/me", h.GetCurrentUser)
	g.PUT("/me/profile", h.UpdateUserProfile)
	g.PUT("/me/password", h.ChangeUserPassword)
	g.POST("/checkout", h.Checkout)
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:id", h.GetOrder)
}

// registerAdmin 后台接口，除登录外均需员工 Token 与 RBAC
func (d routeDeps) registerAdmin(g *gin.RouterGroup, engine *gin.Engine) {
	h := d.admin
	login := loginRule(d.redisPrefix, "admin_login", d.cfg.Security.LoginRateLimit)
	g.POST("/login", RateLimitMiddleware(d.redis, login, KeyByIP), h.AdminLogin)

	authed := g.Group("", JWTAuthMiddleware(d.cfg.JWT.SecretKey, d.container.AuthService), AdminRBACMiddleware(d.container.AuthzService))
	authed.PUT("/password", h.UpdateAdminPassword)

	takeoffs := authed.Group("/takeoffs")
	takeoffs.GET("", h.GetAdminTakeoffs)
	takeoffs.GET("/:id", h.GetAdminTakeoff)
	takeoffs.POST("", h.CreateTakeoff)
	takeoffs.PUT("/:id", h.UpdateTakeoff)
	takeoffs.DELETE("/:id", h.DeleteTakeoff)
	authed.POST("/upload", h.UploadFile)

	promos := authed.Group("/promo-codes")
	promos.GET("", h.GetAdminPromoCodes)
	promos.GET("/:id", h.GetAdminPromoCode)
	promos.POST("", h.CreatePromoCode)
	promos.PUT("/:id", h.UpdatePromoCode)
	promos.DELETE("/:id", h.DeletePromoCode)
	promos.POST("/:id/reset-reserved", h.ResetPromoCodeReserved)

	authed.GET("/transactions", h.GetTransactions)
	authed.GET("/transactions/:id", h.GetTransaction)
	authed.GET("/reconciliations", h.GetReconciliations)
	authed.POST("/reconciliations/:id/resolve", h.ResolveReconciliation)

	authed.GET("/users", h.GetAdminUsers)
	authed.PATCH("/users/:id", h.UpdateAdminUserStatus)
	authed.GET("/contact-messages", h.GetContactMessages)
	authed.GET("/contact-messages/stats", h.GetContactMessageStats)
	authed.GET("/contact-messages/:id", h.GetContactMessage)
	authed.PATCH("/contact-messages/:id", h.UpdateContactMessageStatus)
	authed.DELETE("/contact-messages/:id", h.DeleteContactMessage)

	perm := authed.Group("/authz")
	perm.GET("/me", h.GetAuthzMe)
	perm.GET("/roles", h.ListAuthzRoles)
	perm.GET("/roles/:role/policies", h.GetAuthzRolePolicies)
	perm.POST("/policies", h.GrantAuthzPolicy)
	perm.DELETE("/policies", h.RevokeAuthzPolicy)
	perm.GET("/admins", h.ListAuthzAdmins)
	perm.POST("/admins", h.CreateAuthzAdmin)
	perm.GET("/admins/:id/roles", h.GetAuthzAdminRoles)
	perm.PUT("/admins/:id/roles", h.SetAuthzAdminRoles)
	perm.GET("/permissions/catalog", func(c *gin.Context) {
		response.Success(c, buildAdminPermissionCatalog(engine))
	})
}

func loginRule(redisPrefix, name string, cfg config.LoginRateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Name:          name,
		Prefix:        redisPrefix + ":rate:" + name,
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxAttempts,
		BlockSeconds:  cfg.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
}

// contactRule 联系表单：同一 IP 每 10 分钟 5 次
func contactRule(redisPrefix string) RateLimitRule {
	return RateLimitRule{
		Name:          "contact",
		Prefix:        redisPrefix + ":rate:contact",
		WindowSeconds: 600,
		MaxRequests:   5,
		MessageKey:    "error.too_many_requests",
	}
}

func nonEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
