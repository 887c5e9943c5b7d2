package service

import (
	"context"
	"errors"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/payment/stripe"
)

// PaymentGateway 外部支付网关
type PaymentGateway interface {
	Charge(ctx context.Context, input PaymentChargeInput) (*PaymentChargeResult, error)
}

// PaymentChargeInput 扣款输入（金额为最小货币单位）
type PaymentChargeInput struct {
	AmountMinor     int64
	Currency        string
	PaymentMethodID string
	Description     string
	ReceiptEmail    string
	IdempotencyKey  string
	Metadata        map[string]string
}

// PaymentChargeResult 扣款结果，Status 取 constants.PaymentStatus*
type PaymentChargeResult struct {
	Status      string
	ReferenceID string
}

// StripeGateway 基于 Stripe PaymentIntent 的支付网关
type StripeGateway struct {
	client *stripe.Client
}

// NewStripeGateway 创建 Stripe 网关
func NewStripeGateway(cfg config.StripeConfig) (*StripeGateway, error) {
	stripeCfg := stripe.Config{
		SecretKey:  cfg.SecretKey,
		APIBaseURL: cfg.APIBaseURL,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if err := stripe.ValidateConfig(stripeCfg); err != nil {
		return nil, err
	}
	return &StripeGateway{client: stripe.NewClient(stripeCfg)}, nil
}

// Charge 同步扣款
func (g *StripeGateway) Charge(ctx context.Context, input PaymentChargeInput) (*PaymentChargeResult, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("stripe gateway not configured")
	}
	result, err := g.client.Charge(ctx, stripe.ChargeInput{
		AmountMinor:     input.AmountMinor,
		Currency:        input.Currency,
		PaymentMethodID: input.PaymentMethodID,
		Description:     input.Description,
		ReceiptEmail:    input.ReceiptEmail,
		IdempotencyKey:  input.IdempotencyKey,
		Metadata:        input.Metadata,
	})
	if err != nil {
		return nil, err
	}
	status := constants.PaymentStatusPending
	switch result.Status {
	case stripe.StatusSucceeded:
		status = constants.PaymentStatusSuccess
	case stripe.StatusFailed:
		status = constants.PaymentStatusFailed
	}
	return &PaymentChargeResult{
		Status:      status,
		ReferenceID: result.PaymentIntentID,
	}, nil
}
