package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/metrics"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/queue"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	catalogLoadConcurrency = 4
	defaultMaxLineQuantity = 100
)

// ErrPriceMismatch 购物车价格与目录价格不一致
var ErrPriceMismatch = fmt.Errorf("%w: cart price does not match catalog", ErrInvalidRequest)

// ReceiptQueue 收据邮件任务入队
type ReceiptQueue interface {
	EnqueueOrderReceiptEmail(payload queue.OrderReceiptEmailPayload, opts ...asynq.Option) error
}

// CartLine 购物车行
type CartLine struct {
	TakeoffID uint
	Price     models.Money
	Quantity  int
}

// BuyerSnapshot 下单人身份快照
type BuyerSnapshot struct {
	UserID    uint
	Email     string
	FirstName string
	LastName  string
}

// FullName 下单人姓名，缺省回退邮箱
func (b BuyerSnapshot) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(b.FirstName) + " " + strings.TrimSpace(b.LastName))
	if name == "" {
		return strings.TrimSpace(b.Email)
	}
	return name
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	Items           []CartLine
	Buyer           BuyerSnapshot
	PaymentMethodID string
	PromoCodeID     *uint
	PromoCode       string
	IdempotencyKey  string
	ClientIP        string
	Locale          string
}

func (in CheckoutInput) promoRequested() bool {
	return (in.PromoCodeID != nil && *in.PromoCodeID > 0) || strings.TrimSpace(in.PromoCode) != ""
}

// CheckoutService 结算服务：计价、扣款、落单
type CheckoutService struct {
	cfg         config.OrderConfig
	takeoffRepo repository.TakeoffRepository
	promoRepo   repository.PromoCodeRepository
	orderRepo   repository.OrderRepository
	reconRepo   repository.ReconciliationRepository
	gateway     PaymentGateway
	receipts    ReceiptQueue
	idempotency *cache.IdempotencyStore
	now         func() time.Time
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cfg config.OrderConfig, takeoffRepo repository.TakeoffRepository, promoRepo repository.PromoCodeRepository, orderRepo repository.OrderRepository, reconRepo repository.ReconciliationRepository, gateway PaymentGateway, receipts ReceiptQueue, idempotency *cache.IdempotencyStore) *CheckoutService {
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = constants.CurrencyDefault
	}
	return &CheckoutService{
		cfg:         cfg,
		takeoffRepo: takeoffRepo,
		promoRepo:   promoRepo,
		orderRepo:   orderRepo,
		reconRepo:   reconRepo,
		gateway:     gateway,
		receipts:    receipts,
		idempotency: idempotency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Checkout 执行结算
func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lines, err := normalizeCartLines(input, s.maxLineQuantity())
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutInvalid)
		return nil, err
	}
	input.Items = lines
	input.Buyer.Email = strings.ToLower(strings.TrimSpace(input.Buyer.Email))

	key := strings.TrimSpace(input.IdempotencyKey)
	scope := "checkout:" + input.Buyer.Email
	if key == "" {
		order, _, err := s.process(ctx, input, "")
		return order, err
	}
	if !s.idempotency.Available() {
		order, _, err := s.process(ctx, input, scope+":"+key)
		return order, err
	}

	if order, err := s.replay(ctx, scope, key); err != nil || order != nil {
		return order, err
	}
	locked, err := s.idempotency.TryLock(ctx, scope, key)
	if err != nil {
		logger.Warnw("checkout_idempotency_lock_failed", "email", input.Buyer.Email, "error", err)
		order, _, err := s.process(ctx, input, scope+":"+key)
		return order, err
	}
	if !locked {
		if order, err := s.replay(ctx, scope, key); err != nil || order != nil {
			return order, err
		}
		return nil, ErrCheckoutInProgress
	}

	order, charged, err := s.process(ctx, input, scope+":"+key)
	detached := context.WithoutCancel(ctx)
	if err != nil {
		// 已扣款的失败保持占位，避免客户端重试造成重复扣款
		if !charged {
			if unlockErr := s.idempotency.Unlock(detached, scope, key); unlockErr != nil {
				logger.Warnw("checkout_idempotency_unlock_failed", "email", input.Buyer.Email, "error", unlockErr)
			}
		}
		return nil, err
	}
	if rememberErr := s.idempotency.Remember(detached, scope, key, strconv.FormatUint(uint64(order.ID), 10)); rememberErr != nil {
		logger.Warnw("checkout_idempotency_remember_failed", "order_id", order.ID, "error", rememberErr)
	}
	return order, nil
}

func (s *CheckoutService) replay(ctx context.Context, scope, key string) (*models.Order, error) {
	value, ok, err := s.idempotency.Recall(ctx, scope, key)
	if err != nil {
		logger.Warnw("checkout_idempotency_recall_failed", "scope", scope, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return nil, nil
	}
	order, err := s.orderRepo.GetByID(uint(id))
	if err != nil {
		return nil, err
	}
	return order, nil
}

// process 返回的 charged 表示是否已经发生扣款
func (s *CheckoutService) process(ctx context.Context, input CheckoutInput, chargeKey string) (*models.Order, bool, error) {
	takeoffs, err := s.loadTakeoffs(ctx, input.Items)
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutInvalid)
		return nil, false, err
	}

	original := decimal.Zero
	for _, line := range input.Items {
		takeoff := takeoffs[line.TakeoffID]
		if !line.Price.Decimal.Equal(takeoff.Price.Decimal) {
			metrics.ObserveCheckout(metrics.CheckoutInvalid)
			return nil, false, ErrPriceMismatch
		}
		original = original.Add(line.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	// 折后金额不超过原价，原价可换算即可保证扣款金额与落单金额一致
	if _, err := ToMinorUnits(original); err != nil {
		metrics.ObserveCheckout(metrics.CheckoutInvalid)
		return nil, false, err
	}

	now := s.now()
	promo, discount, err := s.applyPromo(input, original, now)
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutInvalid)
		return nil, false, err
	}
	discountAmount := RoundCurrency(discount)
	amount := original.Sub(discountAmount)

	orderNo := generateOrderNo()
	// 扣款一旦发出，客户端断开也不能中断后续落单
	ctx = context.WithoutCancel(ctx)

	paymentRef, err := s.charge(ctx, input, orderNo, amount, chargeKey)
	if err != nil {
		if promo != nil {
			s.releasePromo(promo.ID)
		}
		metrics.ObserveCheckout(metrics.CheckoutPaymentFailed)
		logger.Warnw("checkout_payment_failed",
			"order_no", orderNo,
			"email", input.Buyer.Email,
			"amount", amount.StringFixed(2),
			"error", err,
		)
		return nil, false, err
	}

	items := s.snapshotItems(input.Items, takeoffs)

	order := &models.Order{
		OrderNo:            orderNo,
		UserID:             input.Buyer.UserID,
		UserEmail:          input.Buyer.Email,
		UserName:           input.Buyer.FullName(),
		Items:              items,
		PaymentReferenceID: paymentRef,
		Currency:           s.cfg.Currency,
		OriginalAmount:     models.NewMoneyFromDecimal(original),
		DiscountAmount:     models.NewMoneyFromDecimal(discountAmount),
		Amount:             models.NewMoneyFromDecimal(amount),
		Status:             constants.OrderStatusPaid,
		ClientIP:           strings.TrimSpace(input.ClientIP),
	}
	if promo != nil {
		s.commitPromo(promo.ID, orderNo)
		promoID := promo.ID
		order.PromoCodeID = &promoID
		order.AppliedPromoCode = &models.AppliedPromoSnapshot{
			ID:            promo.ID,
			Code:          promo.Code,
			Description:   promo.Description,
			DiscountType:  promo.DiscountType,
			DiscountValue: promo.DiscountValue,
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		metrics.ObserveCheckout(metrics.CheckoutPersistFailed)
		logger.Errorw("checkout_order_persist_failed",
			"order_no", orderNo,
			"payment_reference_id", paymentRef,
			"email", input.Buyer.Email,
			"amount", order.Amount.String(),
			"error", err,
		)
		s.recordReconciliation(order, err)
		return nil, true, &PersistenceFailedError{
			PaymentReferenceID: paymentRef,
			Amount:             order.Amount,
			Err:                err,
		}
	}

	metrics.ObserveCheckout(metrics.CheckoutPaid)
	logger.Infow("checkout_order_paid",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"email", order.UserEmail,
		"amount", order.Amount.String(),
		"discount", order.DiscountAmount.String(),
		"promo_code_id", order.PromoCodeID,
	)
	s.enqueueReceipt(order, input.Locale)
	return order, true, nil
}

func (s *CheckoutService) maxLineQuantity() int {
	if s.cfg.MaxLineQuantity > 0 {
		return s.cfg.MaxLineQuantity
	}
	return defaultMaxLineQuantity
}

func normalizeCartLines(input CheckoutInput, maxQuantity int) ([]CartLine, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidRequest)
	}
	if strings.TrimSpace(input.Buyer.Email) == "" {
		return nil, fmt.Errorf("%w: buyer email is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidRequest)
	}
	lines := make([]CartLine, 0, len(input.Items))
	for _, item := range input.Items {
		if item.TakeoffID == 0 {
			return nil, fmt.Errorf("%w: takeoff id is required", ErrInvalidRequest)
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
		}
		if item.Quantity > maxQuantity {
			return nil, fmt.Errorf("%w: quantity exceeds %d", ErrInvalidRequest, maxQuantity)
		}
		if !item.Price.Decimal.IsPositive() {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
		}
		lines = append(lines, item)
	}
	return lines, nil
}

// loadTakeoffs 并发加载购物车涉及的商品
func (s *CheckoutService) loadTakeoffs(ctx context.Context, lines []CartLine) (map[uint]*models.Takeoff, error) {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.TakeoffID]; ok {
			continue
		}
		seen[line.TakeoffID] = struct{}{}
		ids = append(ids, line.TakeoffID)
	}

	loaded := make([]*models.Takeoff, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogLoadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			takeoff, err := s.takeoffRepo.GetActiveByID(id)
			if err != nil {
				return err
			}
			if takeoff == nil {
				return fmt.Errorf("%w: id %d", ErrTakeoffNotFound, id)
			}
			loaded[i] = takeoff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[uint]*models.Takeoff, len(ids))
	for _, takeoff := range loaded {
		result[takeoff.ID] = takeoff
	}
	return result, nil
}

func (s *CheckoutService) resolvePromo(input CheckoutInput) (*models.PromoCode, error) {
	if input.PromoCodeID != nil && *input.PromoCodeID > 0 {
		return s.promoRepo.GetByID(*input.PromoCodeID)
	}
	return s.promoRepo.GetByCode(input.PromoCode)
}

// applyPromo 校验并占用优惠码，返回未舍入的折扣金额
func (s *CheckoutService) applyPromo(input CheckoutInput, subtotal decimal.Decimal, now time.Time) (*models.PromoCode, decimal.Decimal, error) {
	if !input.promoRequested() {
		return nil, decimal.Zero, nil
	}
	promo, err := s.resolvePromo(input)
	if err != nil {
		logger.Warnw("checkout_promo_lookup_failed", "promo_code", input.PromoCode, "error", err)
		return s.rejectPromo(ErrPromoNotValid)
	}
	if promo == nil {
		return s.rejectPromo(ErrPromoNotValid)
	}
	if err := CheckApplicability(promo, subtotal, now); err != nil {
		logger.Infow("checkout_promo_inapplicable", "promo_code_id", promo.ID, "reason", err.Error())
		return s.rejectPromo(err)
	}
	reserved, err := s.promoRepo.ReserveUsage(promo.ID, now)
	if err != nil {
		logger.Warnw("checkout_promo_reserve_failed", "promo_code_id", promo.ID, "error", err)
		return s.rejectPromo(ErrPromoNotValid)
	}
	if !reserved {
		metrics.ObservePromo(metrics.PromoRaceLost)
		logger.Infow("checkout_promo_reservation_lost", "promo_code_id", promo.ID)
		return s.rejectPromo(ErrPromoNotValid)
	}
	return promo, ComputeDiscount(promo, subtotal), nil
}

func (s *CheckoutService) rejectPromo(err error) (*models.PromoCode, decimal.Decimal, error) {
	metrics.ObservePromo(metrics.PromoInapplicable)
	if s.cfg.RequirePromoValidity {
		return nil, decimal.Zero, err
	}
	return nil, decimal.Zero, nil
}

func (s *CheckoutService) releasePromo(promoID uint) {
	released, err := s.promoRepo.ReleaseUsage(promoID)
	if err != nil || !released {
		logger.Errorw("checkout_promo_release_failed", "promo_code_id", promoID, "released", released, "error", err)
		return
	}
	metrics.ObservePromo(metrics.PromoReleased)
}

// commitPromo 核销失败只记录日志，不回滚已完成的扣款
func (s *CheckoutService) commitPromo(promoID uint, orderNo string) {
	committed, err := s.promoRepo.CommitUsage(promoID)
	if err != nil || !committed {
		metrics.ObservePromo(metrics.PromoCommitFailed)
		logger.Errorw("checkout_promo_commit_failed",
			"promo_code_id", promoID,
			"order_no", orderNo,
			"committed", committed,
			"error", err,
		)
		return
	}
	metrics.ObservePromo(metrics.PromoRedeemed)
}

func (s *CheckoutService) charge(ctx context.Context, input CheckoutInput, orderNo string, amount decimal.Decimal, chargeKey string) (string, error) {
	if !amount.IsPositive() {
		return "free_" + uuid.NewString(), nil
	}
	if s.gateway == nil {
		return "", fmt.Errorf("%w: payment gateway not configured", ErrPaymentFailed)
	}
	amountMinor, err := ToMinorUnits(amount)
	if err != nil {
		return "", err
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethodID)
	// 换卡重试需要新的网关幂等键
	if chargeKey != "" {
		chargeKey = chargeKey + ":" + paymentMethod
	}
	result, err := s.gateway.Charge(ctx, PaymentChargeInput{
		AmountMinor:     amountMinor,
		Currency:        s.cfg.Currency,
		PaymentMethodID: paymentMethod,
		Description:     fmt.Sprintf("Takeoff order %s", orderNo),
		ReceiptEmail:    input.Buyer.Email,
		IdempotencyKey:  chargeKey,
		Metadata: map[string]string{
			"order_no":   orderNo,
			"user_email": input.Buyer.Email,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if result == nil || result.Status != constants.PaymentStatusSuccess {
		status := ""
		if result != nil {
			status = result.Status
		}
		return "", fmt.Errorf("%w: status %q", ErrPaymentFailed, status)
	}
	if strings.TrimSpace(result.ReferenceID) == "" {
		return "", fmt.Errorf("%w: missing payment reference", ErrPaymentFailed)
	}
	return result.ReferenceID, nil
}

// snapshotItems 扣款成功后重新读取商品并冻结文件清单，同时累加购买次数
func (s *CheckoutService) snapshotItems(lines []CartLine, preloaded map[uint]*models.Takeoff) models.OrderItems {
	ids := make([]uint, 0, len(preloaded))
	for id := range preloaded {
		ids = append(ids, id)
	}
	current := make(map[uint]*models.Takeoff, len(ids))
	fresh, err := s.takeoffRepo.ListByIDs(ids)
	if err != nil {
		logger.Warnw("checkout_takeoff_reload_failed", "takeoff_ids", ids, "error", err)
	}
	for i := range fresh {
		current[fresh[i].ID] = &fresh[i]
	}

	items := make(models.OrderItems, 0, len(lines))
	for _, line := range lines {
		takeoff := current[line.TakeoffID]
		if takeoff == nil {
			takeoff = preloaded[line.TakeoffID]
		}
		items = append(items, models.OrderItem{
			TakeoffID:    line.TakeoffID,
			Title:        takeoff.Title,
			Price:        line.Price,
			Quantity:     line.Quantity,
			Files:        takeoff.Files.Snapshot(),
			BlueprintURL: resolveBlueprintURL(takeoff),
		})
		if err := s.takeoffRepo.IncrementPurchaseCount(line.TakeoffID, line.Quantity); err != nil {
			logger.Warnw("checkout_purchase_count_increment_failed", "takeoff_id", line.TakeoffID, "error", err)
		}
	}
	return items
}

func resolveBlueprintURL(takeoff *models.Takeoff) string {
	if takeoff == nil {
		return ""
	}
	if link := strings.TrimSpace(takeoff.BlueprintURL); link != "" {
		return link
	}
	if len(takeoff.Files) > 0 {
		return takeoff.Files[0].URL
	}
	return ""
}

func (s *CheckoutService) recordReconciliation(order *models.Order, cause error) {
	if s.reconRepo == nil || order == nil {
		return
	}
	record := &models.CheckoutReconciliation{
		PaymentReferenceID: order.PaymentReferenceID,
		UserEmail:          order.UserEmail,
		Amount:             order.Amount,
		Currency:           order.Currency,
		PromoCodeID:        order.PromoCodeID,
		PayloadJSON:        orderPayload(order),
		Reason:             cause.Error(),
	}
	if err := s.reconRepo.Create(record); err != nil {
		logger.Errorw("checkout_reconciliation_record_failed",
			"order_no", order.OrderNo,
			"payment_reference_id", order.PaymentReferenceID,
			"error", err,
		)
	}
}

func orderPayload(order *models.Order) models.JSON {
	raw, err := json.Marshal(order)
	if err != nil {
		return models.JSON{"order_no": order.OrderNo}
	}
	payload := models.JSON{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.JSON{"order_no": order.OrderNo}
	}
	return payload
}

func (s *CheckoutService) enqueueReceipt(order *models.Order, locale string) {
	if s.receipts == nil {
		return
	}
	err := s.receipts.EnqueueOrderReceiptEmail(queue.OrderReceiptEmailPayload{
		OrderID: order.ID,
		Locale:  strings.TrimSpace(locale),
	})
	if err != nil {
		logger.Warnw("checkout_receipt_enqueue_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
	}
}

func generateOrderNo() string {
	return fmt.Sprintf("PT%s%s", time.Now().UTC().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}
