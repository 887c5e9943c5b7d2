package provider

import (
	"time"

	"github.com/protakeoff/marketplace/internal/authz"
	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/queue"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Repositories
	AdminRepo          repository.AdminRepository
	UserRepo           repository.UserRepository
	TakeoffRepo        repository.TakeoffRepository
	PromoCodeRepo      repository.PromoCodeRepository
	OrderRepo          repository.OrderRepository
	ContactMessageRepo repository.ContactMessageRepository
	ReconciliationRepo repository.ReconciliationRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	UserAuthService       *service.UserAuthService
	EmailService          *service.EmailService
	CaptchaService        *service.CaptchaService
	UploadService         *service.UploadService
	TakeoffService        *service.TakeoffService
	PromoCodeService      *service.PromoCodeService
	PromoCodeAdminService *service.PromoCodeAdminService
	CheckoutService       *service.CheckoutService
	OrderService          *service.OrderService
	ContactService        *service.ContactService
	ReconciliationService *service.ReconciliationService
	PaymentGateway        service.PaymentGateway
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	return build(cfg, models.DB, queueClient)
}

// NewContainerWithDB 使用指定数据库构建容器，不启用队列
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	return build(cfg, db, nil)
}

func build(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices(db)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.TakeoffRepo = repository.NewTakeoffRepository(db)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ContactMessageRepo = repository.NewContactMessageRepository(db)
	c.ReconciliationRepo = repository.NewReconciliationRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	gateway, err := service.NewStripeGateway(c.Config.Stripe)
	if err != nil {
		// 未配置 Stripe 时仍可浏览与零元结算，付费结算将返回支付失败
		logger.Warnw("provider_init_stripe_failed", "error", err)
		gateway = &service.StripeGateway{}
	}
	c.PaymentGateway = gateway

	// 队列未启用时 receipts 为 nil，结算照常完成
	var receipts service.ReceiptQueue
	var contactQueue service.ContactQueue
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		receipts = c.QueueClient
		contactQueue = c.QueueClient
	}

	idempotencyTTL := time.Duration(c.Config.Order.IdempotencyTTLSeconds) * time.Second

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	c.TakeoffService = service.NewTakeoffService(c.TakeoffRepo)
	c.PromoCodeService = service.NewPromoCodeService(c.PromoCodeRepo)
	c.PromoCodeAdminService = service.NewPromoCodeAdminService(c.PromoCodeRepo, c.OrderRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.UserRepo)
	c.ContactService = service.NewContactService(c.ContactMessageRepo, contactQueue)
	c.ReconciliationService = service.NewReconciliationService(c.ReconciliationRepo)
	c.CheckoutService = service.NewCheckoutService(
		c.Config.Order,
		c.TakeoffRepo,
		c.PromoCodeRepo,
		c.OrderRepo,
		c.ReconciliationRepo,
		c.PaymentGateway,
		receipts,
		cache.NewIdempotencyStore(idempotencyTTL),
	)
}
