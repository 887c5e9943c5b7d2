package constants

// 订单状态常量
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// 支付状态常量（网关状态归一化后）
const (
	PaymentStatusSuccess = "success"
	PaymentStatusPending = "pending"
	PaymentStatusFailed  = "failed"
)

// 优惠码折扣类型常量
const (
	PromoTypePercentage = "percentage"
	PromoTypeFixed      = "fixed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 联系留言状态常量
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactStatuses 全部留言状态，统计时按此顺序补零
var ContactStatuses = []string{ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived}

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneRegister = "register"
	CaptchaSceneContact  = "contact"
)

// 队列常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskOrderReceiptEmail   = "order:receipt_email"
	TaskContactNotification = "contact:notify_admin"
	TaskContactConfirmation = "contact:confirm_sender"
	TaskReconciliationAudit = "reconciliation:audit"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pt"
)

// 币种常量
const (
	CurrencyDefault = "usd"
)

// 上传场景常量
const (
	UploadSceneImage   = "image"
	UploadSceneTakeoff = "takeoff"
)
