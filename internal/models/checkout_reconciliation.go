package models

import "time"

// CheckoutReconciliation 已扣款但订单落库失败的待对账记录
type CheckoutReconciliation struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                       // 主键
	PaymentReferenceID string     `gorm:"index;not null" json:"payment_reference_id"` // 支付流水号
	UserEmail          string     `gorm:"index;not null" json:"user_email"`           // 下单邮箱
	Amount             Money      `gorm:"type:decimal(20,2);not null" json:"amount"`  // 已扣金额
	Currency           string     `gorm:"size:10;not null" json:"currency"`           // 币种
	PromoCodeID        *uint      `json:"promo_code_id,omitempty"`                    // 优惠码ID
	PayloadJSON        JSON       `gorm:"type:json" json:"payload"`                   // 待写入订单内容
	Reason             string     `gorm:"type:text" json:"reason"`                    // 失败原因
	ResolvedAt         *time.Time `gorm:"index" json:"resolved_at"`                   // 处理时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                    // 创建时间
}

// TableName 指定表名
func (CheckoutReconciliation) TableName() string {
	return "checkout_reconciliations"
}
