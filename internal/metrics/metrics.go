package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 结算结果标签
const (
	CheckoutPaid          = "paid"
	CheckoutInvalid       = "invalid"
	CheckoutPaymentFailed = "payment_failed"
	CheckoutPersistFailed = "persist_failed"

	PromoRedeemed     = "redeemed"
	PromoReleased     = "released"
	PromoRaceLost     = "race_lost"
	PromoInapplicable = "inapplicable"
	PromoCommitFailed = "commit_failed"

	EmailSent    = "sent"
	EmailSkipped = "skipped"
	EmailFailed  = "failed"
)

var (
	checkoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"result"},
	)

	promoRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Promo code redemption events by outcome",
		},
		[]string{"result"},
	)

	unresolvedReconciliations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_reconciliations_unresolved",
			Help: "Charged checkouts whose order was not saved and still await manual handling",
		},
	)

	emailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_deliveries_total",
			Help: "Outgoing emails by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by a rate limit rule",
		},
		[]string{"rule"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveCheckout 记录结算结果
func ObserveCheckout(result string) {
	checkoutTotal.WithLabelValues(result).Inc()
}

// ObservePromo 记录优惠码核销事件
func ObservePromo(result string) {
	promoRedemptions.WithLabelValues(result).Inc()
}

// SetUnresolvedReconciliations 更新待对账数量
func SetUnresolvedReconciliations(count int64) {
	unresolvedReconciliations.Set(float64(count))
}

// ObserveEmail 记录邮件发送结果
func ObserveEmail(kind, result string) {
	emailDeliveries.WithLabelValues(kind, result).Inc()
}

// ObserveRateLimited 记录被限流拒绝的请求
func ObserveRateLimited(rule string) {
	rateLimited.WithLabelValues(rule).Inc()
}

// Middleware 记录 HTTP 请求耗时
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
