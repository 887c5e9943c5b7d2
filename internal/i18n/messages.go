package i18n

var messagesEN = map[string]string{
	"error.bad_request":                "Invalid request parameters",
	"error.unauthorized":               "Please sign in first",
	"error.forbidden":                  "You do not have permission to perform this action",
	"error.not_found":                  "Resource not found",
	"error.internal":                   "Internal server error",
	"error.too_many_requests":          "Too many requests, please retry in %d seconds",
	"error.login_too_many":             "Too many login attempts, please retry in %d seconds",
	"error.token_invalid":              "Session is invalid or has expired",
	"error.user_id_invalid":            "Invalid user id",
	"error.user_id_type_invalid":       "Invalid user id type",
	"error.admin_id_invalid":           "Invalid admin id",
	"error.admin_id_type_invalid":      "Invalid admin id type",
	"error.invalid_credentials":        "Invalid email or password",
	"error.admin_login_failed":         "Invalid username or password",
	"error.user_disabled":              "This account has been disabled",
	"error.email_exists":               "An account with this email already exists",
	"error.email_invalid":              "Invalid email address",
	"error.user_not_found":             "User not found",
	"error.password_min_length":        "Password must be at least %d characters",
	"error.password_too_long":          "Password must be at most %d bytes",
	"error.password_require_upper":     "Password must contain an uppercase letter",
	"error.password_require_lower":     "Password must contain a lowercase letter",
	"error.password_require_number":    "Password must contain a number",
	"error.password_require_special":   "Password must contain a special character",
	"error.captcha_required":           "Please complete the captcha",
	"error.captcha_invalid":            "Captcha is incorrect or has expired",
	"error.captcha_config_invalid":     "Captcha is not configured correctly",
	"error.takeoff_not_found":          "Takeoff not found",
	"error.takeoff_invalid":            "Invalid takeoff data",
	"error.promo_not_found":            "Promo code not found",
	"error.promo_not_valid":            "Promo code is not valid or has expired",
	"error.promo_below_minimum":        "Minimum order amount of $%s required",
	"error.promo_exists":               "Promo code already exists",
	"error.promo_invalid":              "Invalid promo code data",
	"error.promo_description_required": "Promo code description is required",
	"error.promo_in_use":               "Promo code has been redeemed and can only be deactivated",
	"error.cart_empty":                 "Your cart is empty",
	"error.checkout_invalid":           "Invalid checkout request",
	"error.checkout_in_progress":       "A checkout with this idempotency key is already in progress",
	"error.payment_failed":             "Payment did not succeed. You have not been charged.",
	"error.order_persist_failed":       "Payment succeeded but the order could not be saved. Reference: %s. Our team has been notified.",
	"error.order_not_found":            "Order not found",
	"error.contact_invalid":            "Please provide name, email and message",
	"error.contact_not_found":          "Message not found",
	"error.upload_failed":              "Upload failed",
	"error.upload_too_large":           "File is too large",
	"error.upload_type_invalid":        "File type is not allowed",
	"error.reconciliation_not_found":   "Reconciliation record not found",
	"email.receipt.subject":            "Your ProTakeoff order %s",
	"email.receipt.greeting":           "Hi %s, thank you for your purchase.",
	"email.receipt.subtotal":           "Subtotal",
	"email.receipt.discount":           "Discount",
	"email.receipt.total":              "Total paid",
	"email.receipt.download":           "Download",
	"email.contact.subject":            "New contact message from %s",
	"email.contact_confirm.subject":    "We received your message",
	"email.contact_confirm.body":       "Hi %s,\n\nThanks for contacting ProTakeoff. Our team will reply within one business day.\n\nYour message:\n%s\n",
	"error.password_weak":              "Password does not meet the security policy",
	"error.password_invalid":           "Current password is incorrect",
	"error.auth_header_missing":        "Authorization header is missing",
	"error.auth_header_invalid":        "Authorization header is malformed",
	"error.token_revoked":              "Session has been revoked, please sign in again",
	"error.jwt_secret_missing":         "Authentication is not configured",
	"error.rate_limit_unavailable":     "Rate limiter is unavailable",
	"error.price_mismatch":             "Cart prices are out of date, please refresh",
	"error.user_status_invalid":        "Invalid user status",
	"error.contact_status_invalid":     "Invalid message status",
	"error.role_invalid":               "Invalid role",
	"error.authz_failed":               "Failed to update permissions",
	"error.captcha_generate_failed":    "Failed to generate captcha",
	"message.logged_out":               "Signed out",
	"error.admin_username_invalid":     "Username must be 3-64 characters without spaces",
	"error.admin_username_exists":      "Username already exists",
	"message.contact_received":         "Thanks for reaching out. We will get back to you soon.",
}

var messagesZH = map[string]string{
	"error.bad_request":                "请求参数错误",
	"error.unauthorized":               "请先登录",
	"error.forbidden":                  "无权执行此操作",
	"error.not_found":                  "资源不存在",
	"error.internal":                   "服务器内部错误",
	"error.too_many_requests":          "请求过于频繁，请 %d 秒后重试",
	"error.login_too_many":             "登录尝试次数过多，请 %d 秒后重试",
	"error.token_invalid":              "登录状态无效或已过期",
	"error.user_id_invalid":            "用户 ID 无效",
	"error.user_id_type_invalid":       "用户 ID 类型无效",
	"error.admin_id_invalid":           "管理员 ID 无效",
	"error.admin_id_type_invalid":      "管理员 ID 类型无效",
	"error.invalid_credentials":        "邮箱或密码错误",
	"error.admin_login_failed":         "用户名或密码错误",
	"error.user_disabled":              "账号已被禁用",
	"error.email_exists":               "该邮箱已注册",
	"error.email_invalid":              "邮箱格式错误",
	"error.user_not_found":             "用户不存在",
	"error.password_min_length":        "密码长度至少 %d 位",
	"error.password_too_long":          "密码长度不能超过 %d 字节",
	"error.password_require_upper":     "密码需包含大写字母",
	"error.password_require_lower":     "密码需包含小写字母",
	"error.password_require_number":    "密码需包含数字",
	"error.password_require_special":   "密码需包含特殊字符",
	"error.captcha_required":           "请完成验证码",
	"error.captcha_invalid":            "验证码错误或已过期",
	"error.captcha_config_invalid":     "验证码配置错误",
	"error.takeoff_not_found":          "图纸不存在",
	"error.takeoff_invalid":            "图纸数据无效",
	"error.promo_not_found":            "优惠码不存在",
	"error.promo_not_valid":            "优惠码无效或已过期",
	"error.promo_below_minimum":        "订单金额需满 $%s",
	"error.promo_exists":               "优惠码已存在",
	"error.promo_invalid":              "优惠码数据无效",
	"error.promo_description_required": "优惠码描述不能为空",
	"error.promo_in_use":               "优惠码已被使用，只能停用",
	"error.cart_empty":                 "购物车为空",
	"error.checkout_invalid":           "结算请求无效",
	"error.checkout_in_progress":       "相同幂等键的结算正在处理中",
	"error.payment_failed":             "支付未成功，未产生扣款",
	"error.order_persist_failed":       "支付成功但订单保存失败，参考号：%s，我们已收到通知",
	"error.order_not_found":            "订单不存在",
	"error.contact_invalid":            "请填写姓名、邮箱和留言",
	"error.contact_not_found":          "留言不存在",
	"error.upload_failed":              "上传失败",
	"error.upload_too_large":           "文件过大",
	"error.upload_type_invalid":        "不支持的文件类型",
	"error.reconciliation_not_found":   "对账记录不存在",
	"email.receipt.subject":            "您的 ProTakeoff 订单 %s",
	"email.receipt.greeting":           "%s，您好，感谢您的购买。",
	"email.receipt.subtotal":           "小计",
	"email.receipt.discount":           "优惠",
	"email.receipt.total":              "实付金额",
	"email.receipt.download":           "下载",
	"email.contact.subject":            "来自 %s 的新留言",
	"email.contact_confirm.subject":    "我们已收到您的留言",
	"email.contact_confirm.body":       "%s，您好：\n\n感谢联系 ProTakeoff，我们会在一个工作日内回复您。\n\n您的留言：\n%s\n",
	"error.password_weak":              "密码不符合安全策略",
	"error.password_invalid":           "当前密码错误",
	"error.auth_header_missing":        "缺少认证信息",
	"error.auth_header_invalid":        "认证信息格式错误",
	"error.token_revoked":              "登录状态已失效，请重新登录",
	"error.jwt_secret_missing":         "认证未配置",
	"error.rate_limit_unavailable":     "限流服务不可用",
	"error.price_mismatch":             "购物车价格已变更，请刷新后重试",
	"error.user_status_invalid":        "用户状态无效",
	"error.contact_status_invalid":     "留言状态无效",
	"error.role_invalid":               "角色无效",
	"error.authz_failed":               "权限更新失败",
	"error.captcha_generate_failed":    "验证码生成失败",
	"message.logged_out":               "已退出登录",
	"error.admin_username_invalid":     "用户名需为 3-64 位且不含空格",
	"error.admin_username_exists":      "用户名已存在",
	"message.contact_received":         "感谢留言，我们会尽快回复",
}
